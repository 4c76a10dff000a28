// Package main implements the nescore NES emulator executable.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"

	"nescore/internal/bus"
	"nescore/internal/cartridge"
	"nescore/internal/emu"
	"nescore/internal/version"
)

func main() {
	var (
		romFile  = flag.String("rom", "", "Path to NES ROM file")
		headless = flag.Bool("headless", false, "Run without a window, executing a fixed number of frames")
		frames   = flag.Int("frames", 120, "Number of frames to run in -headless mode")
		scale    = flag.Int("scale", 3, "Window scale factor in GUI mode")
		showHelp = flag.Bool("help", false, "Show help message")
		showVer  = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		printUsage()
		os.Exit(0)
	}

	if *showVer {
		version.PrintBuildInfo()
		os.Exit(0)
	}

	if *romFile == "" {
		log.Fatal("a ROM file is required: -rom <file.nes>")
	}

	cart, err := cartridge.LoadFromFile(*romFile)
	if err != nil {
		log.Fatalf("failed to load ROM %q: %v", *romFile, err)
	}

	b := bus.New()
	b.LoadCartridge(cart)

	if *headless {
		runHeadless(b, *frames)
		return
	}

	runGUI(b, *scale)
}

// runHeadless steps the bus for a fixed number of frames with no window and
// prints the final frame and CPU cycle counts; it writes no trace or image
// output.
func runHeadless(b *bus.Bus, frameCount int) {
	setupGracefulShutdown()

	fmt.Printf("running %d frames headless\n", frameCount)
	b.Run(frameCount)

	fmt.Printf("done: frame=%d cpu_cycles=%d\n", b.GetFrameCount(), b.GetCycleCount())
}

// runGUI opens a window and drives the bus interactively via ebiten.
func runGUI(b *bus.Bus, scale int) {
	setupGracefulShutdown()

	game := emu.New(b)

	ebiten.SetWindowSize(256*scale, 240*scale)
	ebiten.SetWindowTitle("nescore")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("emulation exited: %v", err)
	}
}

func setupGracefulShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		os.Exit(0)
	}()
}

func printUsage() {
	fmt.Println("nescore - NES emulator core")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nescore -rom <file> [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("CONTROLS:")
	fmt.Println("  Arrow keys  D-Pad")
	fmt.Println("  Z           A")
	fmt.Println("  X           B")
	fmt.Println("  Enter       Start")
	fmt.Println("  Right Shift Select")
	fmt.Println("  P           Pause")
}
