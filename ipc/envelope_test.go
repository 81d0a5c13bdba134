package ipc

import (
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/cea-sec/usbsas/types"
)

func TestRequestEnvelope_RoundTrip(t *testing.T) {
	buf, err := EncodeRequest(types.RequestKindReadDir, &types.RequestReadDir{Path: "/photos"})
	if err != nil {
		t.Fatalf("EncodeRequest failed: %v", err)
	}

	kind, body, err := DecodeRequest(buf)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}
	if kind != types.RequestKindReadDir {
		t.Errorf("kind = %q, want %q", kind, types.RequestKindReadDir)
	}

	var msg types.RequestReadDir
	if err := DecodeBody(body, &msg); err != nil {
		t.Fatalf("DecodeBody failed: %v", err)
	}
	if msg.Path != "/photos" {
		t.Errorf("Path = %q, want %q", msg.Path, "/photos")
	}
}

func TestResponseEnvelope_RoundTrip(t *testing.T) {
	buf, err := EncodeResponse(types.ResponseKindStatus, &types.ResponseStatus{
		Status:  types.StatusReadSrc,
		Current: 512,
		Total:   4096,
	})
	if err != nil {
		t.Fatalf("EncodeResponse failed: %v", err)
	}

	kind, body, err := DecodeResponse(buf)
	if err != nil {
		t.Fatalf("DecodeResponse failed: %v", err)
	}
	if kind != types.ResponseKindStatus {
		t.Errorf("kind = %q, want %q", kind, types.ResponseKindStatus)
	}

	var msg types.ResponseStatus
	if err := DecodeBody(body, &msg); err != nil {
		t.Fatalf("DecodeBody failed: %v", err)
	}
	if msg.Status != types.StatusReadSrc || msg.Current != 512 || msg.Total != 4096 {
		t.Errorf("status = %+v, want {read_src 512 4096}", msg)
	}
}

func TestDecodeRequest_UnknownKind(t *testing.T) {
	buf, err := msgpack.Marshal(map[string]any{
		"kind": "teleport",
		"body": nil,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, _, err = DecodeRequest(buf)
	var unknown *UnknownKindError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *UnknownKindError", err)
	}
	if unknown.Kind != "teleport" {
		t.Errorf("Kind = %q, want %q", unknown.Kind, "teleport")
	}
	if IsFrameError(err) {
		t.Error("unknown kind reported as frame error; the two must stay distinct")
	}
}

func TestDecodeResponse_UnknownKind(t *testing.T) {
	buf, err := msgpack.Marshal(map[string]any{
		"kind": "future_response",
		"body": map[string]any{"x": 1},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, _, err = DecodeResponse(buf)
	var unknown *UnknownKindError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *UnknownKindError", err)
	}
}

func TestDecodeResponse_Malformed(t *testing.T) {
	_, _, err := DecodeResponse([]byte{0xc1, 0xff, 0x00})
	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("err = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorDecode {
		t.Errorf("Kind = %v, want FrameErrorDecode", frameErr.Kind)
	}
}

func TestDecodeResponse_NoActiveKind(t *testing.T) {
	buf, err := msgpack.Marshal(map[string]any{"body": nil})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	_, _, err = DecodeResponse(buf)
	var frameErr *FrameError
	if !errors.As(err, &frameErr) {
		t.Fatalf("err = %v, want *FrameError", err)
	}
	if frameErr.Kind != FrameErrorDecode {
		t.Errorf("Kind = %v, want FrameErrorDecode", frameErr.Kind)
	}
}

func TestEncodeRequest_EveryKindDecodes(t *testing.T) {
	kinds := []types.RequestKind{
		types.RequestKindDevices,
		types.RequestKindUserID,
		types.RequestKindOpenDevice,
		types.RequestKindInitTransfer,
		types.RequestKindPartitions,
		types.RequestKindOpenPartition,
		types.RequestKindGetAttr,
		types.RequestKindReadDir,
		types.RequestKindSelectFiles,
		types.RequestKindReport,
		types.RequestKindWipe,
		types.RequestKindImgDisk,
		types.RequestKindEnd,
	}

	for _, k := range kinds {
		buf, err := EncodeRequest(k, nil)
		if err != nil {
			t.Fatalf("%s: EncodeRequest failed: %v", k, err)
		}
		got, _, err := DecodeRequest(buf)
		if err != nil {
			t.Fatalf("%s: DecodeRequest failed: %v", k, err)
		}
		if got != k {
			t.Errorf("kind = %q, want %q", got, k)
		}
	}
}
