// Package console implements the line oriented operator interface of a
// DS3231: showing the time and temperature, setting the time and confirming
// the time after a power loss.
package console // import "github.com/ajanata/rtc/console"

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"

	"github.com/ajanata/rtc/ds3231"
)

// Clock is the part of the driver used by a Session. *ds3231.Device
// implements it.
type Clock interface {
	ReadTime() (ds3231.Time, error)
	WriteTime(ds3231.Time) error
	ReadTemperature() (ds3231.Temperature, error)
	PowerLost() (ds3231.PowerLossStatus, error)
	AcknowledgePowerLoss(ds3231.PowerLossStatus) (ds3231.PowerLossStatus, error)
}

// TimeSource returns the current time from server, or from its default
// server when server is empty.
type TimeSource func(ctx context.Context, server string) (time.Time, error)

// ErrNoTimeSource is returned by the NTP command when no TimeSource is set.
var ErrNoTimeSource = errors.New("console: no network time source")

const banner = "********************************************************************************\n"

// Help is printed by Startup and the HELP command.
const Help = banner +
	"Inputs:\n" +
	"DT [layout]  - Show current date and time (layout: 24h, 12h, date, time, time12, unix)\n" +
	"ST           - Show temperature\n" +
	"OK           - Confirm the date and time after a power loss\n" +
	"NTP [server] - Set the date and time from a time server\n" +
	"HELP         - Show this text\n" +
	"To set the new date and time enter:\n" +
	"\"sec(0-59),min(0-59),hour(0-23),dow(1-Sun),date(1-31),month(1-12),year(00-99)\" No spaces.\n" +
	banner

// Config holds the optional settings of a Session.
type Config struct {
	// Layout is used by DT without an argument.
	Layout ds3231.Layout
	// Log defaults to the logrus standard logger.
	Log logrus.FieldLogger
	// TimeSource serves the NTP command.
	TimeSource TimeSource
}

// Session runs console commands against a clock. Its methods may be called
// from several goroutines.
type Session struct {
	clock  Clock
	out    io.Writer
	layout ds3231.Layout
	log    logrus.FieldLogger
	source TimeSource

	mu    sync.Mutex
	power ds3231.PowerLossStatus
}

// New returns a Session that writes its replies to out.
func New(clock Clock, out io.Writer, cfg Config) *Session {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		clock:  clock,
		out:    out,
		layout: cfg.Layout,
		log:    log,
		source: cfg.TimeSource,
	}
}

// Power returns the power loss status as last seen by the session.
func (s *Session) Power() ds3231.PowerLossStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.power
}

func (s *Session) setPower(st ds3231.PowerLossStatus) {
	s.mu.Lock()
	s.power = st
	s.mu.Unlock()
}

// Startup prints the help text and checks for a power loss. When the
// oscillator was stopped it prints the status and the stored time and asks
// the operator to confirm or replace it.
func (s *Session) Startup() (ds3231.PowerLossStatus, error) {
	fmt.Fprint(s.out, Help)

	st, err := s.clock.PowerLost()
	if err != nil {
		return st, fmt.Errorf("power loss check: %w", err)
	}
	s.setPower(st)
	if !st.Stopped() {
		return st, nil
	}

	s.log.WithField("status", fmt.Sprintf("0x%02X", st.Raw)).Warn("oscillator stop flag set")
	fmt.Fprintln(s.out, "Oscillator either is stopped or was stopped for some period.")
	fmt.Fprintf(s.out, "Status Register: 0x%02X, OSF bit: 1\n", st.Raw)
	if t, err := s.clock.ReadTime(); err != nil {
		fmt.Fprintf(s.out, "Current date and time: unavailable: %v\n", err)
	} else {
		fmt.Fprintf(s.out, "Current date and time: %s\n", t)
	}
	fmt.Fprintln(s.out, "If the time is correct please enter OK otherwise please enter the new time.")
	return st, nil
}

// Handle runs one command line. A failed command writes nothing to out and
// returns the error; the line is not retried.
func (s *Session) Handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if len(args) == 0 {
		return nil
	}
	switch strings.ToUpper(args[0]) {
	case "DT":
		return s.showTime(args[1:])
	case "ST":
		return s.showTemperature()
	case "OK":
		return s.confirm()
	case "HELP", "?":
		fmt.Fprint(s.out, Help)
		return nil
	case "NTP":
		return s.syncNetwork(ctx, args[1:])
	}
	return s.setTime(line)
}

func (s *Session) showTime(args []string) error {
	layout := s.layout
	if len(args) > 0 {
		l, err := ds3231.ParseLayout(args[0])
		if err != nil {
			return err
		}
		layout = l
	}
	t, err := s.clock.ReadTime()
	if err != nil {
		return err
	}
	var buf [ds3231.FormatBufferSize]byte
	n, err := t.FormatTo(buf[:], layout)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Current date and time: %s\n", buf[:n])
	return nil
}

func (s *Session) showTemperature() error {
	temp, err := s.clock.ReadTemperature()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Current temperature: %s\n", temp)
	return nil
}

func (s *Session) confirm() error {
	st := s.Power()
	if st.State == ds3231.PowerUnknown {
		var err error
		if st, err = s.clock.PowerLost(); err != nil {
			return err
		}
		s.setPower(st)
	}
	// A time entered after the loss does not clear the flag on the chip.
	pending := st.Stopped() && (st.State == ds3231.PowerChecked || st.State == ds3231.PowerSuperseded)
	if !pending {
		fmt.Fprintf(s.out, "Status Register: 0x%02X, OSF bit: %d, %s\n", st.Raw, osfBit(st), st.State)
		return nil
	}
	acked, err := s.clock.AcknowledgePowerLoss(st)
	if err != nil {
		return err
	}
	s.setPower(acked)
	s.log.Info("date and time confirmed")
	fmt.Fprintln(s.out, "Date and time have been confirmed!")
	return nil
}

func (s *Session) setTime(line string) error {
	t, err := ds3231.ParseTime(line)
	if err != nil {
		return err
	}
	return s.write(t)
}

func (s *Session) syncNetwork(ctx context.Context, args []string) error {
	if s.source == nil {
		return ErrNoTimeSource
	}
	var server string
	if len(args) > 0 {
		server = args[0]
	}
	now, err := s.source(ctx, server)
	if err != nil {
		return err
	}
	t, err := ds3231.FromStd(now)
	if err != nil {
		return err
	}
	s.log.WithField("server", server).WithField("time", now).Info("setting time from network")
	return s.write(t)
}

// write stores t, marks a pending power loss as superseded and reads the time
// back.
func (s *Session) write(t ds3231.Time) error {
	if err := s.clock.WriteTime(t); err != nil {
		return err
	}
	s.mu.Lock()
	s.power = s.power.Supersede()
	s.mu.Unlock()

	got, err := s.clock.ReadTime()
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "New date and time: %s\n", got)
	return nil
}

func osfBit(st ds3231.PowerLossStatus) int {
	if st.Stopped() {
		return 1
	}
	return 0
}

// Run reads command lines from r until r is exhausted or ctx is done.
// Command errors are reported on out and logged; they do not stop the loop.
func (s *Session) Run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			return err
		case line := <-lines:
			if err := s.Handle(ctx, line); err != nil {
				s.log.WithError(err).WithField("line", line).Warn("command failed")
				fmt.Fprintf(s.out, "Error: %v\n", err)
			}
		}
	}
}
