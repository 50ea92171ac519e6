package cli

import (
	"reflect"
	"testing"

	"ctp/internal/config"
)

func TestFlags_ToConfigFlags(t *testing.T) {
	flags := Flags{
		Processors:    3,
		TestPath:      "build",
		NameFilter:    "FooTest.*",
		Files:         []string{"unit_*"},
		FailFast:      true,
		OnlyFailed:    true,
		RerunFailures: true,
		MetricsFile:   "ctp.prom",
		Store:         config.StoreJSON,
		Verbose:       true,
	}

	expected := config.Flags{
		Processors:    3,
		Filter:        "FooTest.*",
		TestPath:      "build",
		Files:         []string{"unit_*"},
		FailFast:      true,
		Failed:        true,
		RerunFailures: true,
		MetricsFile:   "ctp.prom",
		Store:         config.StoreJSON,
		Verbose:       true,
	}
	if got := flags.ToConfigFlags(); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %+v, got %+v", expected, got)
	}
}
