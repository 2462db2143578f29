package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rokuon/audio"
	"rokuon/config"
	"rokuon/log"
	"rokuon/recorder"
)

var version = "dev"

func main() {
	listFlag := flag.Bool("list", false, "List input devices and exit")
	devicesFlag := flag.String("devices", "", "Comma-separated device names to record (one slot each; default: first device)")
	pickFlag := flag.Bool("pick", false, "Pick the input device interactively")
	settingsFlag := flag.String("settings", "settings.json", "Settings file path")
	outFlag := flag.String("out", "", "Override output directory")
	formatFlag := flag.String("format", "", "Override output format: wave, pcm or flac")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("rokuon %s\n", version)
		return
	}

	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	settings, err := config.Load(*settingsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *outFlag != "" {
		settings.OutputDir = *outFlag
	}
	if *formatFlag != "" {
		settings.Format = strings.ToUpper(*formatFlag)
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log.SessionStart(settings.Format, settings.SampleRate, settings.BitDepth, settings.CompressorEnabled)

	ctx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Fprintf(os.Stderr, "Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer ctx.Close()

	if *listFlag {
		devices, err := ctx.Devices()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, d := range devices {
			fmt.Println(d.Name)
		}
		return
	}

	mgr := recorder.New(ctx, settings)
	if err := addSlots(mgr, ctx, *devicesFlag, *pickFlag); err != nil {
		log.Errorf("slot setup error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := mgr.StartAll(); err != nil {
		log.Errorf("start error: %v", err)
		fmt.Fprintf(os.Stderr, "Error starting recording: %v\n", err)
		os.Exit(1)
	}
	for _, info := range mgr.Snapshot() {
		fmt.Printf("● %s -> %s\n", info.Device.Name, info.Path)
	}
	fmt.Println("Recording... Ctrl+C to stop.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-sigChan:
			break loop
		case <-ticker.C:
			if infos := mgr.Snapshot(); len(infos) > 0 {
				elapsed := infos[0].Elapsed.Round(time.Second)
				fmt.Printf("\r%02d:%02d ", int(elapsed.Minutes()), int(elapsed.Seconds())%60)
			}
		}
	}
	fmt.Println()

	if err := mgr.StopAll(); err != nil {
		log.Errorf("stop error: %v", err)
		fmt.Fprintf(os.Stderr, "Error finalizing recording: %v\n", err)
		os.Exit(1)
	}
	for _, info := range mgr.Snapshot() {
		fmt.Printf("Saved %s\n", info.Path)
	}
}

// addSlots binds one recording slot per requested device. With no -devices
// and no -pick the first enumerated device gets a single slot.
func addSlots(mgr *recorder.Manager, ctx audio.Context, deviceNames string, pick bool) error {
	if pick {
		device, err := audio.SelectDevice(ctx)
		if err != nil {
			return err
		}
		return mgr.AddSlot(device)
	}

	if deviceNames == "" {
		return mgr.AddSlot(nil)
	}

	devices, err := ctx.Devices()
	if err != nil {
		return fmt.Errorf("enumerating devices: %w", err)
	}
	for _, name := range strings.Split(deviceNames, ",") {
		name = strings.TrimSpace(name)
		var found *audio.DeviceInfo
		for i := range devices {
			if devices[i].Name == name {
				found = &devices[i]
				break
			}
		}
		if found == nil {
			return fmt.Errorf("device not found: %s", name)
		}
		if err := mgr.AddSlot(found); err != nil {
			return err
		}
	}
	return nil
}
