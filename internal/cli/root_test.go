package cli

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mirlang/varname/internal/irtext"
)

const testProgram = `
fn main(p: Int decl) {
bb0:
  t0 = alloc_stack Int
  store p to [init] t0
  ret
}
`

func TestRunQueries_TracesThroughLogger(t *testing.T) {
	file, err := irtext.Parse(testProgram)
	if err != nil {
		t.Fatal(err)
	}

	core, logs := observer.New(zap.DebugLevel)
	var sb strings.Builder
	if err := runQueries(file, []string{"t0"}, 0, zap.New(core), &sb); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(sb.String(), "Name: 'p'") {
		t.Errorf("Unexpected query output:\n%s", sb.String())
	}
	if logs.FilterMessage("walk step").Len() == 0 {
		t.Error("The CLI logger should receive the walker's step trace")
	}
	if logs.FilterMessage("inference targets selected").Len() != 1 {
		t.Error("Target selection should be logged once")
	}
}

func TestRunQueries_UnknownValue(t *testing.T) {
	file, err := irtext.Parse(testProgram)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	err = runQueries(file, []string{"missing"}, 0, zap.NewNop(), &sb)
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("Expected an error naming the missing value, got %v", err)
	}
}

func TestRunQueries_AllValuesInProgramOrder(t *testing.T) {
	file, err := irtext.Parse(testProgram)
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := runQueries(file, nil, 0, zap.NewNop(), &sb); err != nil {
		t.Fatal(err)
	}

	out := sb.String()
	pAt := strings.Index(out, "Input Value: p : Int (argument of main)")
	t0At := strings.Index(out, "Input Value: t0 = alloc_stack Int")
	if pAt < 0 || t0At < 0 || pAt > t0At {
		t.Errorf("Parameters should print before instruction results:\n%s", out)
	}
}

func TestConfigAllAccessors_FlagBeatsConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("all-accessors", false)

	if !configAllAccessors(true, true) {
		t.Error("An explicit flag should override the config file")
	}
}

func TestConfigAllAccessors_ConfigAppliesWhenFlagUntouched(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("all-accessors", true)

	if !configAllAccessors(false, false) {
		t.Error("The config value should apply when the flag was not given")
	}
}

func TestConfigAllAccessors_DefaultWithoutConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	if configAllAccessors(false, false) {
		t.Error("Without config or flag the default should hold")
	}
}
