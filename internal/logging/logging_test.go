package logging

import (
	"bytes"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestSetup(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	c.Assert(Setup(&buf, "", false), qt.IsNil)

	Logger().Info("started")
	c.Assert(strings.Contains(buf.String(), "component=ds3231ctl"), qt.Equals, true)
	c.Assert(strings.Contains(buf.String(), "msg=started"), qt.Equals, true)
}

func TestSetupQuiet(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	c.Assert(Setup(&buf, "debug", true), qt.IsNil)

	Logger().Info("hidden")
	c.Assert(buf.Len(), qt.Equals, 0)
	Logger().Warn("shown")
	c.Assert(strings.Contains(buf.String(), "msg=shown"), qt.Equals, true)
}

func TestSetupBadLevel(t *testing.T) {
	c := qt.New(t)
	c.Assert(Setup(&bytes.Buffer{}, "loud", false), qt.ErrorMatches, `not a valid logrus Level: "loud"`)
}
