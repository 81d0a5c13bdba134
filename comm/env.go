package comm

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cea-sec/usbsas/metrics"
)

// Environment variables naming the pipe descriptors handed to a worker
// process. Mirrored by the session package on the spawning side.
const (
	InputPipeFdVar  = "INPUT_PIPE_FD"
	OutputPipeFdVar = "OUTPUT_PIPE_FD"
)

// FromEnv builds the worker half of a Comm from the descriptors advertised
// in the environment. The handed-off pipes are the worker's sole
// communication channel with the client.
func FromEnv(collector *metrics.Collector) (*Comm, error) {
	in, err := fdFromEnv(InputPipeFdVar)
	if err != nil {
		return nil, err
	}
	out, err := fdFromEnv(OutputPipeFdVar)
	if err != nil {
		return nil, err
	}
	return New(
		os.NewFile(uintptr(in), "pipe-in"),
		os.NewFile(uintptr(out), "pipe-out"),
		collector,
	), nil
}

func fdFromEnv(name string) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, fmt.Errorf("%s not set", name)
	}
	fd, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid fd %q: %w", name, v, err)
	}
	return fd, nil
}
