package client

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/mock"
	"github.com/cea-sec/usbsas/types"
)

// mockedClient wires a client to an in-process scripted worker over two
// in-memory pipes, mirroring the two-pipe topology of a real session.
func mockedClient(t *testing.T, opts mock.Options) *Client {
	t.Helper()

	c2pRead, c2pWrite := io.Pipe()
	p2cRead, p2cWrite := io.Pipe()

	worker := mock.NewWorker(comm.New(p2cRead, c2pWrite, nil), opts)
	go func() {
		if err := worker.Serve(); err != nil {
			t.Errorf("worker serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		p2cWrite.Close()
		c2pRead.Close()
	})

	return New(comm.New(c2pRead, p2cWrite, nil), nil, nil)
}

func TestTransfer_FullFlow(t *testing.T) {
	c := mockedClient(t, mock.Options{UserID: "alice"})

	devices, err := c.Devices(false)
	if err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2 USB devices", len(devices))
	}

	var updates int
	report, err := c.Transfer(TransferSpec{
		Source:      devices[0],
		Destination: devices[1],
		Fstype:      types.OutFsTypeNTFS,
		OnStatus:    func(types.ResponseStatus) { updates++ },
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if report["user"] != "alice" {
		t.Errorf("report user = %v, want alice", report["user"])
	}
	if updates == 0 {
		t.Error("no status updates received")
	}

	if err := c.End(); err != nil {
		t.Errorf("End failed: %v", err)
	}
}

func TestTransfer_ExplicitSelection(t *testing.T) {
	c := mockedClient(t, mock.Options{})

	devices, err := c.Devices(false)
	if err != nil {
		t.Fatalf("Devices failed: %v", err)
	}

	report, err := c.Transfer(TransferSpec{
		Source:      devices[0],
		Destination: devices[1],
		Selected:    []string{"/photos/a.jpg"},
		Fstype:      types.OutFsTypeFat32,
	})
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	// msgpack round-trips small ints through the narrowest type, so compare
	// the printed value rather than a concrete integer type.
	if got := fmt.Sprint(report["file_count"]); got != "1" {
		t.Errorf("report file_count = %s, want 1", got)
	}

	if err := c.End(); err != nil {
		t.Errorf("End failed: %v", err)
	}
}

func TestTransfer_PartitionOutOfRange(t *testing.T) {
	c := mockedClient(t, mock.Options{})

	devices, err := c.Devices(false)
	if err != nil {
		t.Fatalf("Devices failed: %v", err)
	}

	_, err = c.Transfer(TransferSpec{
		Source:         devices[0],
		Destination:    devices[1],
		PartitionIndex: 5,
	})
	if err == nil {
		t.Fatal("expected error for out-of-range partition index")
	}

	if err := c.End(); err != nil {
		t.Errorf("End failed: %v", err)
	}
}

func TestTransfer_NetworkSourceNeedsPin(t *testing.T) {
	network := types.Device{
		ID: 7,
		Network: &types.NetworkDevice{
			URL:         "https://imports.example.com",
			Description: "Import server",
			IsSrc:       true,
		},
	}
	usb := mock.DefaultDevices()[1]

	c := mockedClient(t, mock.Options{Devices: []types.Device{network, usb}})

	_, err := c.Transfer(TransferSpec{
		Source:      network,
		Destination: usb,
	})
	var business *comm.BusinessError
	if !errors.As(err, &business) {
		t.Fatalf("err = %v, want *comm.BusinessError", err)
	}

	if err := c.End(); err != nil {
		t.Errorf("End failed: %v", err)
	}
}
