package config

import "testing"

func TestExpandEnv(t *testing.T) {
	t.Setenv("USBSAS_SET", "value")
	t.Setenv("USBSAS_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "${USBSAS_SET}", "value"},
		{"unset variable", "${USBSAS_NOT_SET_ANYWHERE}", ""},
		{"unset with default", "${USBSAS_NOT_SET_ANYWHERE:-fallback}", "fallback"},
		{"set with default", "${USBSAS_SET:-fallback}", "value"},
		{"empty uses default", "${USBSAS_EMPTY:-fallback}", "fallback"},
		{"embedded", "path: ${USBSAS_SET}/bin", "path: value/bin"},
		{"no pattern", "plain text $HOME", "plain text $HOME"},
		{"multiple", "${USBSAS_SET}-${USBSAS_SET}", "value-value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
