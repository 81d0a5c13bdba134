package types

import "testing"

func TestDevice_Roles(t *testing.T) {
	tests := []struct {
		name   string
		device Device
		isSrc  bool
		isDst  bool
	}{
		{
			name:   "usb source",
			device: Device{ID: 1, Usb: &UsbDevice{IsSrc: true}},
			isSrc:  true,
		},
		{
			name:   "usb destination",
			device: Device{ID: 2, Usb: &UsbDevice{IsDst: true}},
			isDst:  true,
		},
		{
			name:   "usb both roles",
			device: Device{ID: 3, Usb: &UsbDevice{IsSrc: true, IsDst: true}},
			isSrc:  true,
			isDst:  true,
		},
		{
			name:   "network destination",
			device: Device{ID: 4, Network: &NetworkDevice{IsDst: true}},
			isDst:  true,
		},
		{
			name:   "command is always a destination",
			device: Device{ID: 5, Command: &CommandDevice{Bin: "/usr/bin/scan"}},
			isDst:  true,
		},
		{
			name:   "no variant",
			device: Device{ID: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.IsSrc(); got != tt.isSrc {
				t.Errorf("IsSrc() = %v, want %v", got, tt.isSrc)
			}
			if got := tt.device.IsDst(); got != tt.isDst {
				t.Errorf("IsDst() = %v, want %v", got, tt.isDst)
			}
		})
	}
}

func TestDevice_Description(t *testing.T) {
	usb := Device{Usb: &UsbDevice{Description: "DataTraveler"}}
	if got := usb.Description(); got != "DataTraveler" {
		t.Errorf("Description() = %q", got)
	}

	network := Device{Network: &NetworkDevice{Description: "Export server"}}
	if got := network.Description(); got != "Export server" {
		t.Errorf("Description() = %q", got)
	}

	empty := Device{}
	if got := empty.Description(); got != "unknown device" {
		t.Errorf("Description() = %q, want unknown device", got)
	}
}
