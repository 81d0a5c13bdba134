package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cea-sec/usbsas/cli/tui"
	"github.com/cea-sec/usbsas/client"
	"github.com/cea-sec/usbsas/iox"
	"github.com/cea-sec/usbsas/types"
)

// WipeCommand returns the wipe command, which erases a destination device
// and follows the progress stream to completion.
func WipeCommand() *cli.Command {
	return &cli.Command{
		Name:  "wipe",
		Usage: "Erase a destination device",
		Flags: append(CommonFlags(),
			&cli.Uint64Flag{
				Name:     "id",
				Usage:    "device id to wipe",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "fstype",
				Value: string(types.OutFsTypeNTFS),
				Usage: "filesystem written after the wipe (ntfs, fat32, exfat)",
			},
			&cli.BoolFlag{
				Name:  "quick",
				Usage: "skip overwriting every sector",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "interactive progress display",
			},
		),
		Action: wipeAction,
	}
}

func wipeAction(c *cli.Context) error {
	opts, err := resolveOptions(c)
	if err != nil {
		return err
	}

	sess, _, err := startSession(c, opts)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(sess)

	cl := sess.Client()
	id := c.Uint64("id")

	run := func(onStatus client.StatusFunc) error {
		if err := cl.Wipe(id, types.OutFsType(c.String("fstype")), c.Bool("quick")); err != nil {
			return err
		}
		return cl.WaitAllDone(onStatus)
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

	fmt.Println("wipe done")
	return nil
}
