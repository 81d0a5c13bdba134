package types

// Device identifies an enumerated transfer endpoint. Exactly one of Usb,
// Network, or Command is non-nil; ID is the opaque handle used to refer to
// the device in later requests. A Device is only valid while the worker
// still enumerates it and becomes stale when the session ends.
type Device struct {
	// ID is the worker-assigned opaque device handle.
	ID uint64 `msgpack:"id" json:"id"`

	Usb     *UsbDevice     `msgpack:"usb,omitempty" json:"usb,omitempty"`
	Network *NetworkDevice `msgpack:"network,omitempty" json:"network,omitempty"`
	Command *CommandDevice `msgpack:"command,omitempty" json:"command,omitempty"`
}

// IsSrc reports whether the device may be used as a transfer source.
func (d *Device) IsSrc() bool {
	switch {
	case d.Usb != nil:
		return d.Usb.IsSrc
	case d.Network != nil:
		return d.Network.IsSrc
	default:
		return false
	}
}

// IsDst reports whether the device may be used as a transfer destination.
func (d *Device) IsDst() bool {
	switch {
	case d.Usb != nil:
		return d.Usb.IsDst
	case d.Network != nil:
		return d.Network.IsDst
	case d.Command != nil:
		return true
	default:
		return false
	}
}

// Description returns a human-readable label for the device.
func (d *Device) Description() string {
	switch {
	case d.Usb != nil:
		return d.Usb.Description
	case d.Network != nil:
		return d.Network.Description
	case d.Command != nil:
		return d.Command.Description
	default:
		return "unknown device"
	}
}

// UsbDevice describes a physical USB mass storage device.
type UsbDevice struct {
	Busnum       uint32 `msgpack:"busnum" json:"busnum"`
	Devnum       uint32 `msgpack:"devnum" json:"devnum"`
	Vendorid     uint32 `msgpack:"vendorid" json:"vendorid"`
	Productid    uint32 `msgpack:"productid" json:"productid"`
	Manufacturer string `msgpack:"manufacturer" json:"manufacturer"`
	Serial       string `msgpack:"serial" json:"serial"`
	Description  string `msgpack:"description" json:"description"`
	IsSrc        bool   `msgpack:"is_src" json:"is_src"`
	IsDst        bool   `msgpack:"is_dst" json:"is_dst"`
	// DevSize is the device capacity in bytes, when known.
	DevSize uint64 `msgpack:"dev_size,omitempty" json:"dev_size,omitempty"`
}

// NetworkDevice describes a remote source or destination reached over HTTP.
type NetworkDevice struct {
	URL         string `msgpack:"url" json:"url"`
	Description string `msgpack:"description" json:"description"`
	IsSrc       bool   `msgpack:"is_src" json:"is_src"`
	IsDst       bool   `msgpack:"is_dst" json:"is_dst"`
}

// CommandDevice describes a post-transfer command destination.
type CommandDevice struct {
	Bin         string   `msgpack:"bin" json:"bin"`
	Args        []string `msgpack:"args,omitempty" json:"args,omitempty"`
	Description string   `msgpack:"description" json:"description"`
}

// OutFsType is the filesystem written on a destination device.
type OutFsType string

// Destination filesystem types.
const (
	OutFsTypeNTFS  OutFsType = "ntfs"
	OutFsTypeFat32 OutFsType = "fat32"
	OutFsTypeExFat OutFsType = "exfat"
)

// FileType classifies an entry returned by read_dir / get_attr.
type FileType string

// File types.
const (
	FileTypeRegular   FileType = "regular"
	FileTypeDirectory FileType = "directory"
	FileTypeMetadata  FileType = "metadata"
	FileTypeOther     FileType = "other"
)

// FileInfo describes one filesystem entry on an opened partition.
type FileInfo struct {
	Path      string   `msgpack:"path" json:"path"`
	Ftype     FileType `msgpack:"ftype" json:"ftype"`
	Size      uint64   `msgpack:"size" json:"size"`
	Timestamp int64    `msgpack:"timestamp" json:"timestamp"`
}

// PartitionInfo describes one partition of an opened device.
type PartitionInfo struct {
	Index uint32 `msgpack:"index" json:"index"`
	// Start is the first sector of the partition.
	Start uint64 `msgpack:"start" json:"start"`
	// Size is the partition size in sectors.
	Size uint64 `msgpack:"size" json:"size"`
	// Ptype is the raw partition type byte from the partition table.
	Ptype uint32 `msgpack:"ptype" json:"ptype"`
	// NameStr is the human-readable filesystem name (e.g. "NTFS", "FAT").
	NameStr string `msgpack:"name_str" json:"name_str"`
}
