package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cea-sec/usbsas/comm"
	"github.com/cea-sec/usbsas/iox"
	"github.com/cea-sec/usbsas/types"
)

// DevicesCommand returns the devices command, which lists the transfer
// endpoints the worker currently enumerates.
func DevicesCommand() *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List connected devices",
		Flags: append(CommonFlags(),
			&cli.BoolFlag{
				Name:  "include-alt",
				Usage: "also list network and command targets",
			},
		),
		Action: devicesAction,
	}
}

func devicesAction(c *cli.Context) error {
	opts, err := resolveOptions(c)
	if err != nil {
		return err
	}

	sess, _, err := startSession(c, opts)
	if err != nil {
		return err
	}
	defer iox.DiscardClose(sess)

	devices, err := sess.Client().Devices(c.Bool("include-alt"))
	if err != nil {
		return exitForErr(err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(devices)
	}

	if len(devices) == 0 {
		fmt.Println("no devices connected")
		return nil
	}
	for _, d := range devices {
		fmt.Println(devLine(d))
	}
	return nil
}

// devLine formats one device for human-readable listings.
func devLine(d types.Device) string {
	switch {
	case d.Usb != nil:
		u := d.Usb
		return fmt.Sprintf("%3d  usb      %s %s - %s (%04x:%04x) src=%v dst=%v",
			d.ID, u.Manufacturer, u.Description, u.Serial, u.Vendorid, u.Productid, u.IsSrc, u.IsDst)
	case d.Network != nil:
		return fmt.Sprintf("%3d  network  %s (%s)", d.ID, d.Network.Description, d.Network.URL)
	case d.Command != nil:
		return fmt.Sprintf("%3d  command  %s (%s)", d.ID, d.Command.Description, d.Command.Bin)
	default:
		return fmt.Sprintf("%3d  unknown", d.ID)
	}
}

// exitForErr maps protocol outcomes onto exit codes: business errors from
// the worker are recoverable operator-facing failures, everything else is a
// protocol or transport failure.
func exitForErr(err error) error {
	if comm.IsBusinessError(err) {
		return cli.Exit(err.Error(), ExitBusiness)
	}
	return cli.Exit(err.Error(), ExitProtocol)
}
