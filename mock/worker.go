// Package mock implements an in-memory worker serving the full protocol.
//
// It answers every request kind from a scripted device set and file tree,
// and streams synthetic progress for the long-running operations. Used by
// the usbsas-mock binary and by end-to-end tests; no device, filesystem, or
// transfer logic lives here.
package mock

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/log"
	"github.com/cea-sec/usbsas/types"
)

// Options configures the scripted worker state.
type Options struct {
	// Devices is the enumerated device set. Defaults to one source and one
	// destination USB device.
	Devices []types.Device
	// Files maps directory paths to their entries. Defaults to a small tree
	// under "/".
	Files map[string][]types.FileInfo
	// UserID is the identified operator. Defaults to "mockuser".
	UserID string
	// StatusSteps is the number of progress updates streamed before the
	// terminal code. Defaults to 4.
	StatusSteps int
	// StatusDelay is an optional pause between progress updates, for demos.
	StatusDelay time.Duration
	// Logger is optional.
	Logger *log.Logger
}

// Worker serves the protocol over one Comm until the End exchange.
type Worker struct {
	comm   *comm.Comm
	opts   Options
	logger *log.Logger

	opened        *types.Device
	partitionOpen bool
	transferSrc   *types.Device
	transferDst   *types.Device
	selectedSize  uint64
	report        map[string]any
}

// NewWorker creates a scripted worker over the given comm.
func NewWorker(c *comm.Comm, opts Options) *Worker {
	if len(opts.Devices) == 0 {
		opts.Devices = DefaultDevices()
	}
	if opts.Files == nil {
		opts.Files = DefaultFiles()
	}
	if opts.UserID == "" {
		opts.UserID = "mockuser"
	}
	if opts.StatusSteps <= 0 {
		opts.StatusSteps = 4
	}
	return &Worker{comm: c, opts: opts, logger: opts.Logger}
}

// DefaultDevices returns the default scripted device set: one source USB
// device, one destination USB device, and one network destination.
func DefaultDevices() []types.Device {
	return []types.Device{
		{
			ID: 1,
			Usb: &types.UsbDevice{
				Busnum: 1, Devnum: 3,
				Vendorid: 0x0951, Productid: 0x1666,
				Manufacturer: "Kingston", Serial: "08606E6D4123",
				Description: "DataTraveler 100",
				IsSrc:       true,
				DevSize:     16 * 1024 * 1024 * 1024,
			},
		},
		{
			ID: 2,
			Usb: &types.UsbDevice{
				Busnum: 1, Devnum: 4,
				Vendorid: 0x0781, Productid: 0x5567,
				Manufacturer: "SanDisk", Serial: "4C530001110318",
				Description: "Cruzer Blade",
				IsDst:       true,
				DevSize:     8 * 1024 * 1024 * 1024,
			},
		},
		{
			ID: 3,
			Network: &types.NetworkDevice{
				URL:         "https://exports.example.com/usbsas",
				Description: "Export server",
				IsDst:       true,
			},
		},
	}
}

// DefaultFiles returns the default scripted file tree.
func DefaultFiles() map[string][]types.FileInfo {
	return map[string][]types.FileInfo{
		"/": {
			{Path: "/report.pdf", Ftype: types.FileTypeRegular, Size: 123456, Timestamp: 1700000000},
			{Path: "/photos", Ftype: types.FileTypeDirectory, Timestamp: 1700000100},
		},
		"/photos": {
			{Path: "/photos/a.jpg", Ftype: types.FileTypeRegular, Size: 2048000, Timestamp: 1700000200},
			{Path: "/photos/b.jpg", Ftype: types.FileTypeRegular, Size: 1024000, Timestamp: 1700000300},
		},
	}
}

// Serve answers requests until the End exchange, a closed pipe, or a fatal
// protocol error. A clean End returns nil.
func (w *Worker) Serve() error {
	for {
		req, err := w.comm.RecvRequest()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if w.logger != nil {
			w.logger.Debug("request received", map[string]any{"kind": string(req.Kind)})
		}

		done, err := w.handle(req)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// handle dispatches one request. The returned bool is true after the End
// exchange.
func (w *Worker) handle(req *comm.Request) (bool, error) {
	switch req.Kind {
	case types.RequestKindDevices:
		var r types.RequestDevices
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		devices := make([]types.Device, 0, len(w.opts.Devices))
		for _, d := range w.opts.Devices {
			if d.Usb == nil && !r.IncludeAlt {
				continue
			}
			devices = append(devices, d)
		}
		return false, w.comm.SendResponse(types.ResponseKindDevices,
			&types.ResponseDevices{Devices: devices})

	case types.RequestKindUserID:
		return false, w.comm.SendResponse(types.ResponseKindUserID,
			&types.ResponseUserID{UserID: w.opts.UserID})

	case types.RequestKindOpenDevice:
		var r types.RequestOpenDevice
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		dev := w.device(r.Device.ID)
		if dev == nil {
			return false, w.comm.SendError(fmt.Sprintf("unknown device %d", r.Device.ID))
		}
		w.opened = dev
		var devSize uint64
		if dev.Usb != nil {
			devSize = dev.Usb.DevSize
		}
		return false, w.comm.SendResponse(types.ResponseKindOpenDevice,
			&types.ResponseOpenDevice{SectorSize: 512, DevSize: devSize})

	case types.RequestKindInitTransfer:
		var r types.RequestInitTransfer
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		src, dst := w.device(r.Source), w.device(r.Destination)
		switch {
		case src == nil || !src.IsSrc():
			return false, w.comm.SendError("selected source device error")
		case dst == nil || !dst.IsDst():
			return false, w.comm.SendError("selected destination device error")
		case src.Network != nil && r.Pin == nil:
			return false, w.comm.SendError("transfer from network requested without pin")
		case src.Network != nil && dst.Network != nil:
			return false, w.comm.SendError("network to network transfer not supported")
		}
		w.transferSrc, w.transferDst = src, dst
		return false, w.comm.SendResponse(types.ResponseKindInitTransfer,
			&types.ResponseInitTransfer{})

	case types.RequestKindPartitions:
		if w.opened == nil {
			return false, w.comm.SendError("no device opened")
		}
		return false, w.comm.SendResponse(types.ResponseKindPartitions,
			&types.ResponsePartitions{Partitions: []types.PartitionInfo{
				{Index: 0, Start: 2048, Size: 31455232, Ptype: 0x07, NameStr: "NTFS"},
			}})

	case types.RequestKindOpenPartition:
		var r types.RequestOpenPartition
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		if w.opened == nil {
			return false, w.comm.SendError("no device opened")
		}
		if r.Index != 0 {
			return false, w.comm.SendError(fmt.Sprintf("no partition %d", r.Index))
		}
		w.partitionOpen = true
		return false, w.comm.SendResponse(types.ResponseKindOpenPartition,
			&types.ResponseOpenPartition{})

	case types.RequestKindGetAttr:
		var r types.RequestGetAttr
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		fi := w.lookup(r.Path)
		if fi == nil {
			return false, w.comm.SendError(fmt.Sprintf("no such path %q", r.Path))
		}
		return false, w.comm.SendResponse(types.ResponseKindGetAttr,
			&types.ResponseGetAttr{Ftype: fi.Ftype, Size: fi.Size, Timestamp: fi.Timestamp})

	case types.RequestKindReadDir:
		var r types.RequestReadDir
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		if !w.partitionOpen {
			return false, w.comm.SendError("no partition opened")
		}
		entries, ok := w.opts.Files[r.Path]
		if !ok {
			return false, w.comm.SendError(fmt.Sprintf("no such directory %q", r.Path))
		}
		return false, w.comm.SendResponse(types.ResponseKindReadDir,
			&types.ResponseReadDir{FilesInfo: entries})

	case types.RequestKindSelectFiles:
		var r types.RequestSelectFiles
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		if w.transferSrc == nil {
			return false, w.comm.SendError("transfer not initialized")
		}
		var total uint64
		for _, path := range r.Selected {
			if fi := w.lookup(path); fi != nil {
				total += fi.Size
			}
		}
		w.selectedSize = total
		if err := w.comm.SendResponse(types.ResponseKindSelectFiles,
			&types.ResponseSelectFiles{SelectedSize: total}); err != nil {
			return false, err
		}
		w.report = map[string]any{
			"title":          "usbsas transfer",
			"user":           w.opts.UserID,
			"file_count":     len(r.Selected),
			"transfer_size":  total,
			"filtered_files": []string{},
			"status":         "success",
		}
		return false, w.stream(types.StatusReadSrc, total)

	case types.RequestKindReport:
		if w.report == nil {
			return false, w.comm.SendError("no report available")
		}
		return false, w.comm.SendResponse(types.ResponseKindReport,
			&types.ResponseReport{Report: w.report})

	case types.RequestKindWipe:
		var r types.RequestWipe
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		dev := w.device(r.ID)
		if dev == nil || dev.Usb == nil {
			return false, w.comm.SendError(fmt.Sprintf("unknown device %d", r.ID))
		}
		if err := w.comm.SendResponse(types.ResponseKindWipe, &types.ResponseWipe{}); err != nil {
			return false, err
		}
		return false, w.stream(types.StatusWipe, dev.Usb.DevSize)

	case types.RequestKindImgDisk:
		var r types.RequestImgDisk
		if err := req.DecodeInto(&r); err != nil {
			return false, err
		}
		dev := w.device(r.ID)
		if dev == nil || dev.Usb == nil {
			return false, w.comm.SendError(fmt.Sprintf("unknown device %d", r.ID))
		}
		if err := w.comm.SendResponse(types.ResponseKindImgDisk, &types.ResponseImgDisk{}); err != nil {
			return false, err
		}
		return false, w.stream(types.StatusDiskImg, dev.Usb.DevSize)

	case types.RequestKindEnd:
		if err := w.comm.SendResponse(types.ResponseKindEnd, &types.ResponseEnd{}); err != nil {
			return true, err
		}
		return true, nil

	default:
		// The kind set is closed and RecvRequest already rejected unknown
		// tags, so this is unreachable; answer with an error anyway rather
		// than hanging the client.
		return false, w.comm.SendError(fmt.Sprintf("unhandled request %q", req.Kind))
	}
}

// stream emits StatusSteps progress updates followed by the terminal code.
func (w *Worker) stream(code types.StatusCode, total uint64) error {
	steps := uint64(w.opts.StatusSteps)
	if total == 0 {
		total = steps
	}
	for i := uint64(1); i <= steps; i++ {
		if w.opts.StatusDelay > 0 {
			time.Sleep(w.opts.StatusDelay)
		}
		if err := w.comm.SendStatus(code, total*i/steps, total); err != nil {
			return err
		}
	}
	return w.comm.SendDone(total, total)
}

func (w *Worker) device(id uint64) *types.Device {
	for i := range w.opts.Devices {
		if w.opts.Devices[i].ID == id {
			return &w.opts.Devices[i]
		}
	}
	return nil
}

func (w *Worker) lookup(path string) *types.FileInfo {
	for _, entries := range w.opts.Files {
		for i := range entries {
			if entries[i].Path == path {
				return &entries[i]
			}
		}
	}
	return nil
}
