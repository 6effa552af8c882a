// Command microloop wires the time base, effect registry, controllers,
// display, and preset subsystems into a running process, and exposes
// the operator surface of spec.md §6: a handful of startup flags plus a
// line-oriented debug console (dump trace, clear trace, print time-base
// status). Flag handling is grounded on doismellburning/samoyed's
// appserver.go (pflag.StringP/Bool/Usage/Parse).
package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/levon-m/microloop/internal/config"
	"github.com/levon-m/microloop/internal/logging"
	"github.com/levon-m/microloop/internal/trace"
	"github.com/levon-m/microloop/pkg/audioblock"
	"github.com/levon-m/microloop/pkg/clock"
	"github.com/levon-m/microloop/pkg/control"
	"github.com/levon-m/microloop/pkg/display"
	"github.com/levon-m/microloop/pkg/effect"
	"github.com/levon-m/microloop/pkg/effect/choke"
	"github.com/levon-m/microloop/pkg/effect/freeze"
	"github.com/levon-m/microloop/pkg/effect/stutter"
	"github.com/levon-m/microloop/pkg/preset"
	"github.com/levon-m/microloop/pkg/quant"
	"github.com/levon-m/microloop/pkg/ring"
	"github.com/levon-m/microloop/pkg/timebase"
)

func main() {
	configPath := pflag.StringP("config", "c", "config.yaml", "Path to the YAML configuration file.")
	sim := pflag.Bool("sim", false, "Run a simulated audio graph instead of waiting for real hardware.")
	logLevel := pflag.StringP("log-level", "l", "info", "Minimum log level: debug, info, warn, error.")
	help := pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "microloop - real-time looper/stutter pedal control process\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	level, err := log.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --log-level %q: %s\n", *logLevel, err)
		os.Exit(1)
	}
	logging.SetLevel(level)
	logger := logging.For("main")

	cfg, found, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", "path", *configPath, "err", err)
	}
	if found {
		logger.Info("loaded config", "path", *configPath)
	} else {
		logger.Info("no config file found, using built-in defaults", "path", *configPath)
	}

	rig := buildRig(cfg)

	if *sim {
		go rig.runSimAudio()
	}
	go rig.runControlLoop()

	rig.runConsole()
}

// rig holds every wired subsystem the control thread and console drive.
type rig struct {
	cfg config.Config

	tb    *timebase.TimeBase
	grid  *quant.Grid
	alloc *audioblock.PoolAllocator

	registry *effect.Registry
	chokeN   *choke.Node
	freezeN  *freeze.Node
	stutterN *stutter.Node

	chokeCtl   *control.ChokeController
	freezeCtl  *control.FreezeController
	stutterCtl *control.StutterController

	displayMgr *display.Manager
	presetCtl  *preset.Controller
	presetLog  *log.Logger

	tempo      *clock.TempoEstimator
	pulses     *ring.Ring[clock.Pulse]
	transports *ring.Ring[clock.Event]
	commands   *ring.Ring[effect.Command]

	trace *trace.Buffer
}

func buildRig(cfg config.Config) *rig {
	tb := timebase.Global()
	grid := quant.Global()

	sub, ok := parseSubdivision(cfg.DefaultSubdivision)
	if !ok {
		sub = quant.Sixteenth
	}
	grid.Set(sub)

	alloc := audioblock.NewPoolAllocator(16)

	chokeN := choke.New(alloc, tb.SamplePosition)
	freezeN := freeze.New(alloc, tb.SamplePosition)
	stutterN := stutter.New(alloc, tb.SamplePosition)

	registry := effect.NewRegistry()
	mustRegister(registry, effect.Choke, chokeN)
	mustRegister(registry, effect.Freeze, freezeN)
	mustRegister(registry, effect.Stutter, stutterN)

	r := &rig{
		cfg:        cfg,
		tb:         tb,
		grid:       grid,
		alloc:      alloc,
		registry:   registry,
		chokeN:     chokeN,
		freezeN:    freezeN,
		stutterN:   stutterN,
		chokeCtl:   control.NewChokeController(chokeN, tb, grid),
		freezeCtl:  control.NewFreezeController(freezeN, tb, grid),
		stutterCtl: control.NewStutterController(stutterN, tb, grid),
		displayMgr: display.New(registry),
		presetCtl:  preset.NewController(stutterN, preset.NewFileStorage(cfg.PresetPaths)),
		presetLog:  logging.For("preset"),
		tempo:      clock.NewTempoEstimator(0.1),
		pulses:     ring.New[clock.Pulse](256),
		transports: ring.New[clock.Event](64),
		commands:   ring.New[effect.Command](64),
		trace:      trace.NewBuffer(),
	}

	r.presetCtl.OnResult = func(op string, slot int, err error) {
		if err != nil {
			r.presetLog.Error("preset operation failed", "op", op, "slot", slot, "err", err)
			r.trace.Record("preset %s slot=%d failed: %s", op, slot, err)
			return
		}
		r.presetLog.Info("preset operation complete", "op", op, "slot", slot)
		r.trace.Record("preset %s slot=%d ok", op, slot)
	}
	r.presetCtl.Begin()

	return r
}

func mustRegister(registry *effect.Registry, id effect.ID, node effect.Node) {
	if err := registry.Register(id, node); err != nil {
		logging.For("main").Fatal("effect registration failed", "id", id, "err", err)
	}
}

func parseSubdivision(name string) (quant.Subdivision, bool) {
	switch name {
	case "thirtysecond":
		return quant.Thirtysecond, true
	case "sixteenth":
		return quant.Sixteenth, true
	case "eighth":
		return quant.Eighth, true
	case "quarter":
		return quant.Quarter, true
	default:
		return 0, false
	}
}

// runControlLoop drains the clock/transport/command queues and runs the
// beat-synced preset LED update once per tick, at the same cadence the
// audio interrupt advances blocks (spec.md §2 item 3, §4.10).
func (r *rig) runControlLoop() {
	period := time.Duration(float64(timebase.BlockSize) / float64(timebase.SampleRate) * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	ctlLog := logging.For("control")

	for range ticker.C {
		r.transports.Drain(func(ev clock.Event) {
			switch ev.Type() {
			case clock.EventTypeStart:
				r.tb.Start()
				r.tempo.Reset()
				r.trace.Record("transport start")
			case clock.EventTypeStop:
				r.tb.Stop()
				r.trace.Record("transport stop")
			case clock.EventTypeContinue:
				r.tb.Continue()
				r.trace.Record("transport continue")
			}
		})

		r.pulses.Drain(func(p clock.Pulse) {
			r.tb.IncrementTick()
			if tickPeriod, ok := r.tempo.Observe(p.TimestampMicros); ok {
				if !r.tb.SyncToMusicalClock(tickPeriod) {
					ctlLog.Warn("tempo out of range, ignoring", "period_us", tickPeriod)
				}
			}
		})

		r.commands.Drain(func(cmd effect.Command) {
			if !r.registry.Execute(cmd) {
				ctlLog.Warn("unhandled command", "target", cmd.TargetEffect, "type", cmd.Type)
			}
		})

		beat := r.tb.PollBeatFlag()
		for slot := 1; slot <= 4; slot++ {
			r.displayMgr.SetLED(uint8(slot), display.LEDColor{G: 255}, boolToIntensity(r.presetCtl.LEDOn(slot, beat)))
		}
	}
}

func boolToIntensity(on bool) float64 {
	if on {
		return 1
	}
	return 0
}

// runSimAudio drives the three effect nodes through a synthetic audio
// graph (Stutter -> Freeze -> Choke, the original's chain order per
// DisplayManager.cpp's priority comment) at real-time block cadence, for
// --sim runs with no physical codec attached.
func (r *rig) runSimAudio() {
	period := time.Duration(float64(timebase.BlockSize) / float64(timebase.SampleRate) * float64(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for range ticker.C {
		bus := &audioblock.Bus{Alloc: r.alloc}
		bus.In[audioblock.PortLeft] = r.alloc.Allocate()
		bus.In[audioblock.PortRight] = r.alloc.Allocate()
		if bus.In[audioblock.PortLeft] == nil || bus.In[audioblock.PortRight] == nil {
			r.tb.IncrementSamples(timebase.BlockSize)
			continue
		}

		r.stutterN.Update(bus)
		bus.In[audioblock.PortLeft], bus.In[audioblock.PortRight] = bus.Out[audioblock.PortLeft], bus.Out[audioblock.PortRight]
		bus.Out[audioblock.PortLeft], bus.Out[audioblock.PortRight] = nil, nil

		r.freezeN.Update(bus)
		bus.In[audioblock.PortLeft], bus.In[audioblock.PortRight] = bus.Out[audioblock.PortLeft], bus.Out[audioblock.PortRight]
		bus.Out[audioblock.PortLeft], bus.Out[audioblock.PortRight] = nil, nil

		r.chokeN.Update(bus)

		r.alloc.Release(bus.Out[audioblock.PortLeft])
		r.alloc.Release(bus.Out[audioblock.PortRight])

		r.tb.IncrementSamples(timebase.BlockSize)
	}
}

// runConsole is the operator surface of spec.md §6: dump trace, clear
// trace, print time-base status, read from stdin line by line.
func (r *rig) runConsole() {
	fmt.Println("microloop console. Commands: trace, clear, status, quit")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		switch scanner.Text() {
		case "trace":
			for _, e := range r.trace.Dump() {
				fmt.Printf("%s  %s\n", e.At.Format("15:04:05.000"), e.Message)
			}
		case "clear":
			r.trace.Clear()
			fmt.Println("trace cleared")
		case "status":
			fmt.Printf("sample=%d beat=%d tick=%d samples/beat=%d subdivision=%s transport=%d\n",
				r.tb.SamplePosition(), r.tb.BeatNumber(), r.tb.TickInBeat(),
				r.tb.SamplesPerBeat(), r.grid.Get(), r.tb.TransportStateValue())
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command")
		}
	}
}
