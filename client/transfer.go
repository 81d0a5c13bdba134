package client

import (
	"fmt"

	"github.com/cea-sec/usbsas/types"
)

// TransferSpec describes one complete source-to-destination transfer.
type TransferSpec struct {
	// Source and Destination are devices from a prior Devices call.
	Source      types.Device
	Destination types.Device
	// PartitionIndex selects the source partition to read.
	PartitionIndex uint32
	// Selected are the paths to copy. Empty means everything under root.
	Selected []string
	// Fstype is the filesystem written on a USB destination.
	Fstype types.OutFsType
	// Pin unlocks a network source.
	Pin *string
	// OnStatus receives progress updates during the copy.
	OnStatus StatusFunc
}

// Transfer drives the canonical transfer sequence: identify the operator,
// bind source and destination, open the source partition, select the files,
// consume the progress stream, and fetch the report.
//
// Any error aborts the sequence where it happened; the caller owns session
// teardown.
func (c *Client) Transfer(spec TransferSpec) (map[string]any, error) {
	if _, err := c.UserID(); err != nil {
		return nil, fmt.Errorf("identify operator: %w", err)
	}

	if err := c.InitTransfer(spec.Source.ID, spec.Destination.ID, spec.Fstype, spec.Pin); err != nil {
		return nil, fmt.Errorf("init transfer: %w", err)
	}

	if _, err := c.OpenDevice(spec.Source); err != nil {
		return nil, fmt.Errorf("open source device: %w", err)
	}

	parts, err := c.Partitions()
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	if int(spec.PartitionIndex) >= len(parts) {
		return nil, fmt.Errorf("partition index %d out of range (%d partitions)",
			spec.PartitionIndex, len(parts))
	}

	if err := c.OpenPartition(spec.PartitionIndex); err != nil {
		return nil, fmt.Errorf("open partition %d: %w", spec.PartitionIndex, err)
	}

	selected := spec.Selected
	if len(selected) == 0 {
		files, err := c.ReadDir("/")
		if err != nil {
			return nil, fmt.Errorf("list root directory: %w", err)
		}
		for _, f := range files {
			selected = append(selected, f.Path)
		}
	}

	size, err := c.SelectFiles(selected)
	if err != nil {
		return nil, fmt.Errorf("select files: %w", err)
	}
	if c.logger != nil {
		c.logger.Info("copy started", map[string]any{
			"files":         len(selected),
			"selected_size": size,
		})
	}

	if err := c.WaitAllDone(spec.OnStatus); err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}

	report, err := c.Report()
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}
	return report, nil
}
