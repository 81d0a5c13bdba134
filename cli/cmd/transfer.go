package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/cea-sec/usbsas/adapter"
	"github.com/cea-sec/usbsas/cli/tui"
	"github.com/cea-sec/usbsas/client"
	"github.com/cea-sec/usbsas/iox"
	"github.com/cea-sec/usbsas/types"
)

// TransferCommand returns the transfer command: the canonical
// source-to-destination copy driven end to end, with optional report
// delivery to the configured adapter.
func TransferCommand() *cli.Command {
	return &cli.Command{
		Name:  "transfer",
		Usage: "Copy files from a source device to a destination device",
		Flags: append(CommonFlags(),
			&cli.Uint64Flag{
				Name:  "source",
				Usage: "source device id (default: first source-capable device)",
			},
			&cli.Uint64Flag{
				Name:  "destination",
				Usage: "destination device id (default: first destination-capable device)",
			},
			&cli.UintFlag{
				Name:  "partition",
				Usage: "source partition index",
			},
			&cli.StringSliceFlag{
				Name:  "select",
				Usage: "path to copy (repeatable; default: everything under /)",
			},
			&cli.StringFlag{
				Name:  "fstype",
				Value: string(types.OutFsTypeNTFS),
				Usage: "destination filesystem (ntfs, fat32, exfat)",
			},
			&cli.StringFlag{
				Name:  "pin",
				Usage: "access pin for a network source",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "interactive device picker and progress display",
			},
		),
		Action: transferAction,
	}
}

func transferAction(c *cli.Context) error {
	opts, err := resolveOptions(c)
	if err != nil {
		return err
	}

	rep, err := newAdapter(opts.cfg.Adapter)
	if err != nil {
		return cli.Exit(err.Error(), ExitUsage)
	}
	if rep != nil {
		defer iox.DiscardClose(rep)
	}

	sess, _, err := startSession(c, opts)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(sess)

	cl := sess.Client()

	devices, err := cl.Devices(true)
	if err != nil {
		return exitForErr(err)
	}

	src, dst, err := pickEndpoints(c, devices)
	if err != nil {
		return err
	}

	var pin *string
	if v := c.String("pin"); v != "" {
		pin = &v
	}

	spec := client.TransferSpec{
		Source:         *src,
		Destination:    *dst,
		PartitionIndex: uint32(c.Uint("partition")),
		Selected:       c.StringSlice("select"),
		Fstype:         types.OutFsType(c.String("fstype")),
		Pin:            pin,
	}

	var report map[string]any
	run := func(onStatus client.StatusFunc) error {
		spec.OnStatus = onStatus
		var err error
		report, err = cl.Transfer(spec)
		return err
	}

	if c.Bool("tui") {
		err = tui.RunTransfer(run)
	} else {
		err = run(func(st types.ResponseStatus) {
			fmt.Printf("%-12s %d / %d\n", st.Status, st.Current, st.Total)
		})
	}
	if err != nil {
		return exitForErr(err)
	}

	if rep != nil {
		event := &adapter.ReportEvent{
			ContractVersion: types.Version,
			EventType:       "transfer_report",
			SessionID:       sess.ID(),
			Worker:          opts.workerPath,
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
			Report:          report,
		}
		if user, ok := report["user"].(string); ok {
			event.UserID = user
		}
		if err := rep.Publish(c.Context, event); err != nil {
			// Delivery failure does not undo a completed transfer.
			fmt.Fprintf(os.Stderr, "report delivery failed: %v\n", err)
		}
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Println("transfer done")
	return nil
}

// pickEndpoints resolves the source and destination devices from flags,
// falling back to the interactive picker (with --tui) or the first capable
// device of each role.
func pickEndpoints(c *cli.Context, devices []types.Device) (src, dst *types.Device, err error) {
	if len(devices) == 0 {
		return nil, nil, cli.Exit("no devices connected", ExitBusiness)
	}

	byID := func(id uint64) *types.Device {
		for i := range devices {
			if devices[i].ID == id {
				return &devices[i]
			}
		}
		return nil
	}

	if id := c.Uint64("source"); id != 0 {
		if src = byID(id); src == nil {
			return nil, nil, cli.Exit(fmt.Sprintf("no device with id %d", id), ExitUsage)
		}
	}
	if id := c.Uint64("destination"); id != 0 {
		if dst = byID(id); dst == nil {
			return nil, nil, cli.Exit(fmt.Sprintf("no device with id %d", id), ExitUsage)
		}
	}

	if src == nil && c.Bool("tui") {
		if src, err = tui.PickDevice("Select source device", filterDevices(devices, (*types.Device).IsSrc)); err != nil {
			return nil, nil, cli.Exit(err.Error(), ExitUsage)
		}
	}
	if dst == nil && c.Bool("tui") {
		if dst, err = tui.PickDevice("Select destination device", filterDevices(devices, (*types.Device).IsDst)); err != nil {
			return nil, nil, cli.Exit(err.Error(), ExitUsage)
		}
	}

	for i := range devices {
		if src == nil && devices[i].IsSrc() {
			src = &devices[i]
		}
		if dst == nil && devices[i].IsDst() && (src == nil || devices[i].ID != src.ID) {
			dst = &devices[i]
		}
	}

	if src == nil {
		return nil, nil, cli.Exit("no source-capable device", ExitBusiness)
	}
	if dst == nil {
		return nil, nil, cli.Exit("no destination-capable device", ExitBusiness)
	}
	return src, dst, nil
}

func filterDevices(devices []types.Device, keep func(*types.Device) bool) []types.Device {
	out := make([]types.Device, 0, len(devices))
	for i := range devices {
		if keep(&devices[i]) {
			out = append(out, devices[i])
		}
	}
	return out
}
