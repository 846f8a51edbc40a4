// Command pihole-buttons polls the four case buttons of a Pi-hole
// appliance and turns debounced holds into brightness changes, guarded
// maintenance updates and power transitions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/pihole-buttons/internal/backlight"
	"github.com/sweeney/pihole-buttons/internal/config"
	"github.com/sweeney/pihole-buttons/internal/display"
	"github.com/sweeney/pihole-buttons/internal/gpio"
	"github.com/sweeney/pihole-buttons/internal/logic"
	"github.com/sweeney/pihole-buttons/internal/mqtt"
	"github.com/sweeney/pihole-buttons/internal/ops"
	"github.com/sweeney/pihole-buttons/internal/status"
	"github.com/sweeney/pihole-buttons/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (built-in defaults if empty)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	printState := flag.Bool("print-state", false, "Print current button state and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	if *httpAddr != "" {
		if *httpAddr == "off" {
			cfg.HTTP.Addr = ""
		} else {
			cfg.HTTP.Addr = *httpAddr
		}
	}

	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config, printState bool) error {
	// Initialize GPIO
	reader, err := gpio.NewRealReader(cfg.Pins())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	// Print state mode
	if printState {
		pressed, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		for btn := logic.Button(0); btn < logic.NumButtons; btn++ {
			fmt.Printf("%s: %s\n", btn, pressedString(pressed[btn]))
		}
		return nil
	}

	// Initialize the backlight. A missing PWM channel (no dtoverlay, or
	// running off-appliance) must not stop button handling, so fall back
	// to a no-op output.
	var bl backlight.Backlight
	bl, err = backlight.NewSysfs(cfg.Backlight.Chip, cfg.Backlight.Channel, cfg.Backlight.FrequencyHz)
	if err != nil {
		log.Printf("backlight unavailable, brightness disabled: %v", err)
		bl = backlight.Nop{}
	}
	defer bl.Close()

	// Initialize MQTT (optional)
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		real, err := mqtt.NewRealPublisher(cfg.MQTT.Broker)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:           int64(cfg.Timing.PollMs),
		DebounceMs:       int64(cfg.Timing.DebounceMs),
		ConfirmTimeoutMs: int64(cfg.Timing.ConfirmTimeoutMs),
		HeartbeatMs:      int64(cfg.Timing.HeartbeatMs),
		Gamma:            cfg.Backlight.Gamma,
		Broker:           cfg.MQTT.Broker,
		HTTPAddr:         cfg.HTTP.Addr,
	})

	// Assemble the reporter chain: process log always, tmux screen when
	// the session is reachable, MQTT telemetry when a broker is set.
	reporters := display.Multi{display.LogReporter{}}
	if cfg.Tmux.Enabled {
		tm := display.NewTmux(cfg.Tmux.Session, cfg.Tmux.PaddWindow, cfg.Tmux.ControlWindow, cfg.FeedbackDelay())
		if err := tm.CheckSession(); err != nil {
			log.Printf("tmux feedback disabled: %v", err)
		} else {
			reporters = append(reporters, tm)
		}
	}
	if publisher != nil {
		reporters = append(reporters, mqtt.NewReporter(publisher))
	}

	// Wire the dispatcher with its side-effect implementations.
	results := make(chan logic.OperationResult, 4)
	starter := &ops.AsyncStarter{
		Runner: &ops.ExecRunner{
			GravityCmd: cfg.Commands.Gravity,
			SystemCmd:  cfg.Commands.System,
			Reporter:   reporters,
		},
		Results: results,
	}
	disp := logic.NewDispatcher(logic.DispatcherConfig{
		Brightness:     logic.NewBrightness(cfg.Backlight.DefaultLevel, cfg.Backlight.Gamma),
		ConfirmTimeout: cfg.ConfirmTimeout(),
		Backlight:      bl,
		Jobs:           starter,
		Power: &ops.ExecPower{
			RebootCmd:   cfg.Commands.Reboot,
			ShutdownCmd: cfg.Commands.Shutdown,
		},
		Reporter: reporters,
	})

	if err := disp.ApplyBrightness(); err != nil {
		log.Printf("initial brightness: %v", err)
	}

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: poll=%v debounce=%v confirm=%v broker=%s heartbeat=%v",
		cfg.Poll(), cfg.Debounce(), cfg.ConfirmTimeout(), cfg.MQTT.Broker, cfg.Heartbeat())

	ticker := time.NewTicker(cfg.Poll())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(reader, disp, results, publisher, mqttStatus, tracker,
		cfg.Debounce(), cfg.Thresholds(), cfg.Heartbeat(), time.Now, ticker.C, sigCh)
}

func runLoop(reader gpio.Reader, disp *logic.Dispatcher, results <-chan logic.OperationResult,
	publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker,
	debounce time.Duration, thresholds logic.Thresholds, heartbeat time.Duration,
	now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {

	deb := logic.NewDebouncer(debounce)
	holds := logic.NewHoldClassifier(thresholds)
	lastHeartbeat := now()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if tracker != nil {
					updateTracker(tracker, disp, deb, mqttStatus)
					event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
				}
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			t := now()

			// Finished jobs first, then window expiry, then new input.
		drain:
			for {
				select {
				case res := <-results:
					log.Printf("job result: %s ok=%v %s", res.Kind, res.OK, res.Detail)
					disp.OnResult(res)
				default:
					break drain
				}
			}
			disp.Tick(t)

			pressed, err := reader.Read()
			if err != nil {
				log.Printf("gpio read error: %v", err)
				continue
			}

			for btn := logic.Button(0); btn < logic.NumButtons; btn++ {
				edge := deb.Observe(btn, pressed[btn], t)
				if edge == nil {
					continue
				}
				if ev := holds.OnEdge(*edge); ev != nil {
					log.Printf("hold: %s held %v -> %s", ev.Button, ev.Held.Truncate(time.Millisecond), ev.Tier)
					disp.OnHold(*ev, t)
				}
			}

			if !deb.IsBaselined() {
				// Still waiting for baseline
				continue
			}

			// Check for heartbeat
			if heartbeat > 0 && t.Sub(lastHeartbeat) >= heartbeat {
				lastHeartbeat = t
				counts := disp.Counts()
				log.Printf("heartbeat: brightness=%d%% armed=%d confirmed=%d succeeded=%d failed=%d",
					disp.BrightnessLevel(), counts.Armed, counts.Confirmed, counts.Succeeded, counts.Failed)

				if publisher != nil {
					hbEvent := mqtt.SystemEvent{
						Timestamp: t,
						Event:     "HEARTBEAT",
					}
					if tracker != nil {
						updateTracker(tracker, disp, deb, mqttStatus)
						hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
					}
					if err := publisher.PublishSystem(hbEvent); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}

			// Update status tracker for HTTP consumers
			updateTracker(tracker, disp, deb, mqttStatus)
		}
	}
}

func updateTracker(tracker *status.Tracker, disp *logic.Dispatcher, deb *logic.Debouncer, mqttStatus mqtt.ConnectionStatus) {
	if tracker == nil {
		return
	}
	tracker.Update(disp.BrightnessLevel(), disp.BrightnessDuty(), disp.WindowStates(), deb.IsBaselined(), disp.Counts())
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
