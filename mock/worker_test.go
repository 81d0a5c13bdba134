package mock

import (
	"errors"
	"io"
	"testing"

	"github.com/cea-sec/usbsas/client"
	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/types"
)

// serve wires a worker to a client over in-memory pipes and reports the
// worker's Serve result through the returned channel.
func serve(t *testing.T, opts Options) (*client.Client, chan error) {
	t.Helper()

	c2pRead, c2pWrite := io.Pipe()
	p2cRead, p2cWrite := io.Pipe()

	worker := NewWorker(comm.New(p2cRead, c2pWrite, nil), opts)
	served := make(chan error, 1)
	go func() {
		served <- worker.Serve()
	}()
	t.Cleanup(func() {
		p2cWrite.Close()
		c2pRead.Close()
	})

	return client.New(comm.New(c2pRead, p2cWrite, nil), nil, nil), served
}

func TestServe_DeviceFiltering(t *testing.T) {
	c, _ := serve(t, Options{})

	usbOnly, err := c.Devices(false)
	if err != nil {
		t.Fatalf("Devices(false) failed: %v", err)
	}
	for _, d := range usbOnly {
		if d.Usb == nil {
			t.Errorf("device %d is not USB but was listed without include_alt", d.ID)
		}
	}

	all, err := c.Devices(true)
	if err != nil {
		t.Fatalf("Devices(true) failed: %v", err)
	}
	if len(all) <= len(usbOnly) {
		t.Errorf("include_alt listed %d devices, want more than %d", len(all), len(usbOnly))
	}
}

func TestServe_OpenUnknownDevice(t *testing.T) {
	c, _ := serve(t, Options{})

	_, err := c.OpenDevice(types.Device{ID: 99})
	var business *comm.BusinessError
	if !errors.As(err, &business) {
		t.Fatalf("err = %v, want *comm.BusinessError", err)
	}
}

func TestServe_ReadDirWithoutOpenPartition(t *testing.T) {
	c, _ := serve(t, Options{})

	_, err := c.ReadDir("/")
	var business *comm.BusinessError
	if !errors.As(err, &business) {
		t.Fatalf("err = %v, want *comm.BusinessError", err)
	}
}

func TestServe_NetworkToNetworkRejected(t *testing.T) {
	netSrc := types.Device{
		ID:      1,
		Network: &types.NetworkDevice{URL: "https://a.example.com", IsSrc: true},
	}
	netDst := types.Device{
		ID:      2,
		Network: &types.NetworkDevice{URL: "https://b.example.com", IsDst: true},
	}
	c, _ := serve(t, Options{Devices: []types.Device{netSrc, netDst}})

	pin := "1234"
	err := c.InitTransfer(1, 2, types.OutFsTypeNTFS, &pin)
	var business *comm.BusinessError
	if !errors.As(err, &business) {
		t.Fatalf("err = %v, want *comm.BusinessError", err)
	}
	if business.Msg != "network to network transfer not supported" {
		t.Errorf("Msg = %q", business.Msg)
	}
}

func TestServe_GetAttr(t *testing.T) {
	c, _ := serve(t, Options{})

	attr, err := c.GetAttr("/report.pdf")
	if err != nil {
		t.Fatalf("GetAttr failed: %v", err)
	}
	if attr.Ftype != types.FileTypeRegular {
		t.Errorf("Ftype = %q, want regular", attr.Ftype)
	}
	if attr.Size == 0 {
		t.Error("Size = 0, want nonzero")
	}
}

func TestServe_WipeStreamsToDone(t *testing.T) {
	c, _ := serve(t, Options{StatusSteps: 3})

	if err := c.Wipe(2, types.OutFsTypeExFat, false); err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}

	var codes []types.StatusCode
	err := c.WaitAllDone(func(st types.ResponseStatus) {
		codes = append(codes, st.Status)
	})
	if err != nil {
		t.Fatalf("WaitAllDone failed: %v", err)
	}
	if len(codes) != 4 {
		t.Fatalf("received %d updates, want 3 progress + terminal", len(codes))
	}
	for _, code := range codes[:3] {
		if code != types.StatusWipe {
			t.Errorf("progress code = %q, want wipe", code)
		}
	}
	if !codes[3].IsTerminal() {
		t.Errorf("last code = %q, want terminal", codes[3])
	}
}

func TestServe_ImgDiskStreamsToDone(t *testing.T) {
	c, _ := serve(t, Options{StatusSteps: 2})

	if err := c.ImgDisk(1); err != nil {
		t.Fatalf("ImgDisk failed: %v", err)
	}
	if err := c.WaitAllDone(nil); err != nil {
		t.Fatalf("WaitAllDone failed: %v", err)
	}
}

func TestServe_ReportBeforeTransfer(t *testing.T) {
	c, _ := serve(t, Options{})

	_, err := c.Report()
	var business *comm.BusinessError
	if !errors.As(err, &business) {
		t.Fatalf("err = %v, want *comm.BusinessError", err)
	}
}

func TestServe_EndStopsServing(t *testing.T) {
	c, served := serve(t, Options{})

	if err := c.End(); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	if err := <-served; err != nil {
		t.Errorf("Serve returned %v, want nil after End", err)
	}
}

func TestServe_ClosedPipeIsCleanExit(t *testing.T) {
	c2pRead, c2pWrite := io.Pipe()
	p2cRead, p2cWrite := io.Pipe()

	worker := NewWorker(comm.New(p2cRead, c2pWrite, nil), Options{})
	served := make(chan error, 1)
	go func() {
		served <- worker.Serve()
	}()

	p2cWrite.Close()
	if err := <-served; err != nil {
		t.Errorf("Serve returned %v, want nil on closed pipe", err)
	}
	c2pRead.Close()
}
