package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cea-sec/usbsas/cli/tui"
	"github.com/cea-sec/usbsas/client"
	"github.com/cea-sec/usbsas/iox"
	"github.com/cea-sec/usbsas/types"
)

// ImgDiskCommand returns the imgdisk command, which images a whole source
// device and follows the progress stream to completion.
func ImgDiskCommand() *cli.Command {
	return &cli.Command{
		Name:  "imgdisk",
		Usage: "Image a whole source device",
		Flags: append(CommonFlags(),
			&cli.Uint64Flag{
				Name:     "id",
				Usage:    "device id to image",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "interactive progress display",
			},
		),
		Action: imgDiskAction,
	}
}

func imgDiskAction(c *cli.Context) error {
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
		if err := cl.ImgDisk(id); err != nil {
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

	fmt.Println("disk image done")
	return nil
}
