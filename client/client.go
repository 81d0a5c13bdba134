// Package client presents one strongly-typed operation per protocol
// capability. Every method follows the same shape: build the request
// variant, exchange it through the dispatcher, short-circuit on the error
// kind, validate the expected response kind, decode.
package client

import (
	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/log"
	"github.com/cea-sec/usbsas/metrics"
	"github.com/cea-sec/usbsas/types"
)

// Client is the typed API over one worker connection.
type Client struct {
	comm      *comm.Comm
	logger    *log.Logger
	collector *metrics.Collector
}

// New creates a client over the given dispatcher. logger and collector may
// be nil; a nil logger disables client-side logging.
func New(c *comm.Comm, logger *log.Logger, collector *metrics.Collector) *Client {
	return &Client{comm: c, logger: logger, collector: collector}
}

// call performs one exchange and decodes the response into out (which may be
// nil for acknowledge-only responses). The error short-circuit runs before
// any kind check: an error response fails the call regardless of which
// operation was invoked.
func (c *Client) call(req types.RequestKind, payload any, want types.ResponseKind, out any) error {
	resp, err := c.comm.Call(req, payload)
	if err != nil {
		return err
	}

	if resp.Kind == types.ResponseKindError {
		var e types.ResponseError
		if err := resp.DecodeInto(&e); err != nil {
			return err
		}
		c.collector.IncBusinessErrors()
		if c.logger != nil {
			c.logger.Debug("worker returned error", map[string]any{
				"request": string(req),
				"error":   e.Err,
			})
		}
		return &comm.BusinessError{Msg: e.Err}
	}

	if resp.Kind != want {
		c.collector.IncProtocolViolations()
		return &comm.UnexpectedKindError{Want: want, Got: resp.Kind}
	}

	if out == nil {
		return nil
	}
	return resp.DecodeInto(out)
}

// Devices enumerates the currently connected transfer endpoints. With
// includeAlt, alternate (network / command) targets are listed too.
// An empty list is a valid result.
func (c *Client) Devices(includeAlt bool) ([]types.Device, error) {
	var out types.ResponseDevices
	err := c.call(types.RequestKindDevices, &types.RequestDevices{IncludeAlt: includeAlt},
		types.ResponseKindDevices, &out)
	if err != nil {
		return nil, err
	}
	return out.Devices, nil
}

// UserID returns the identified operator.
func (c *Client) UserID() (string, error) {
	var out types.ResponseUserID
	err := c.call(types.RequestKindUserID, &types.RequestUserID{},
		types.ResponseKindUserID, &out)
	if err != nil {
		return "", err
	}
	return out.UserID, nil
}

// OpenDevice opens a source device for reading and returns its geometry.
func (c *Client) OpenDevice(dev types.Device) (*types.ResponseOpenDevice, error) {
	var out types.ResponseOpenDevice
	err := c.call(types.RequestKindOpenDevice, &types.RequestOpenDevice{Device: dev},
		types.ResponseKindOpenDevice, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InitTransfer binds a source and destination device for the session.
// pin is required when the source is a network device.
func (c *Client) InitTransfer(source, destination uint64, fstype types.OutFsType, pin *string) error {
	return c.call(types.RequestKindInitTransfer, &types.RequestInitTransfer{
		Source:      source,
		Destination: destination,
		Fstype:      fstype,
		Pin:         pin,
	}, types.ResponseKindInitTransfer, nil)
}

// Partitions lists the partitions of the opened device.
func (c *Client) Partitions() ([]types.PartitionInfo, error) {
	var out types.ResponsePartitions
	err := c.call(types.RequestKindPartitions, &types.RequestPartitions{},
		types.ResponseKindPartitions, &out)
	if err != nil {
		return nil, err
	}
	return out.Partitions, nil
}

// OpenPartition mounts one partition of the opened device.
func (c *Client) OpenPartition(index uint32) error {
	return c.call(types.RequestKindOpenPartition, &types.RequestOpenPartition{Index: index},
		types.ResponseKindOpenPartition, nil)
}

// GetAttr fetches the attributes of a single path on the opened partition.
func (c *Client) GetAttr(path string) (*types.ResponseGetAttr, error) {
	var out types.ResponseGetAttr
	err := c.call(types.RequestKindGetAttr, &types.RequestGetAttr{Path: path},
		types.ResponseKindGetAttr, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReadDir lists a directory on the opened partition.
func (c *Client) ReadDir(path string) ([]types.FileInfo, error) {
	var out types.ResponseReadDir
	err := c.call(types.RequestKindReadDir, &types.RequestReadDir{Path: path},
		types.ResponseKindReadDir, &out)
	if err != nil {
		return nil, err
	}
	return out.FilesInfo, nil
}

// SelectFiles selects the paths to transfer, starts the copy, and returns
// the total selected size in bytes. Progress follows as a status stream;
// consume it with WaitAllDone.
func (c *Client) SelectFiles(selected []string) (uint64, error) {
	var out types.ResponseSelectFiles
	err := c.call(types.RequestKindSelectFiles, &types.RequestSelectFiles{Selected: selected},
		types.ResponseKindSelectFiles, &out)
	if err != nil {
		return 0, err
	}
	c.comm.BeginStream()
	return out.SelectedSize, nil
}

// Report fetches the transfer report.
func (c *Client) Report() (map[string]any, error) {
	var out types.ResponseReport
	err := c.call(types.RequestKindReport, &types.RequestReport{},
		types.ResponseKindReport, &out)
	if err != nil {
		return nil, err
	}
	return out.Report, nil
}

// Wipe erases a destination device. The acknowledge response returns
// immediately; progress follows as a status stream.
func (c *Client) Wipe(id uint64, fstype types.OutFsType, quick bool) error {
	err := c.call(types.RequestKindWipe, &types.RequestWipe{ID: id, Fstype: fstype, Quick: quick},
		types.ResponseKindWipe, nil)
	if err != nil {
		return err
	}
	c.comm.BeginStream()
	return nil
}

// ImgDisk images a whole source device. The acknowledge response returns
// immediately; progress follows as a status stream.
func (c *Client) ImgDisk(id uint64) error {
	err := c.call(types.RequestKindImgDisk, &types.RequestImgDisk{ID: id},
		types.ResponseKindImgDisk, nil)
	if err != nil {
		return err
	}
	c.comm.BeginStream()
	return nil
}

// End sends the End request and returns whatever response arrives. Always
// the last protocol exchange on a session; the session layer signals and
// reaps the worker afterwards.
func (c *Client) End() error {
	return c.call(types.RequestKindEnd, &types.RequestEnd{}, types.ResponseKindEnd, nil)
}
