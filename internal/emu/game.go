// Package emu wires a Bus into an ebiten.Game for interactive play.
package emu

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nescore/internal/bus"
	"nescore/internal/input"
)

const (
	screenWidth  = 256
	screenHeight = 240

	audioSampleRate = 44100

	// audioBufferBytes bounds how far the APU can run ahead of the audio
	// player before queueAudio starts dropping the oldest samples, capping
	// latency after a pause or a slow host frame.
	audioBufferBytes = audioSampleRate * 4 / 5 // ~0.2s of stereo 16-bit PCM
)

// keyMap binds a host keyboard key to a controller button, in the standard
// A, B, Select, Start, Up, Down, Left, Right order SetButtons expects.
var keyMap = [8]ebiten.Key{
	ebiten.KeyZ,
	ebiten.KeyX,
	ebiten.KeyShiftRight,
	ebiten.KeyEnter,
	ebiten.KeyUp,
	ebiten.KeyDown,
	ebiten.KeyLeft,
	ebiten.KeyRight,
}

// Game implements ebiten.Game, driving a Bus at one emulated frame per host
// frame and presenting its PPU frame buffer and APU samples.
type Game struct {
	bus         *bus.Bus
	frameImage  *ebiten.Image
	pixels      []byte
	audioCtx    *audio.Context
	audioStream *audioQueue
	audioPlayer *audio.Player
	paused      bool
}

// New creates a Game around an already-loaded Bus.
func New(b *bus.Bus) *Game {
	g := &Game{
		bus:        b,
		frameImage: ebiten.NewImage(screenWidth, screenHeight),
		pixels:     make([]byte, screenWidth*screenHeight*4),
	}

	b.SetAudioSampleRate(audioSampleRate)
	g.audioCtx = audio.NewContext(audioSampleRate)
	g.audioStream = newAudioQueue(audioBufferBytes)

	player, err := g.audioCtx.NewPlayer(g.audioStream)
	if err == nil {
		g.audioPlayer = player
		g.audioPlayer.Play()
	}

	return g
}

// Update advances emulation by one frame and handles host input.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}

	var buttons [8]bool
	for i, key := range keyMap {
		buttons[i] = ebiten.IsKeyPressed(key)
	}
	g.bus.SetControllerButtons(1, buttons)

	if !g.paused {
		g.bus.Run(1)
		g.queueAudio()
	}

	return nil
}

// queueAudio drains the APU's pending samples into the streaming audio
// queue, converting float32 mono samples to signed 16-bit stereo PCM.
func (g *Game) queueAudio() {
	samples := g.bus.GetAudioSamples()
	if len(samples) == 0 {
		return
	}

	pcm := make([]byte, len(samples)*4)
	for i, s := range samples {
		v := int16(s * 32767)
		pcm[i*4] = byte(v)
		pcm[i*4+1] = byte(v >> 8)
		pcm[i*4+2] = byte(v)
		pcm[i*4+3] = byte(v >> 8)
	}
	g.audioStream.write(pcm)
}

// audioQueue is an io.Reader backed by a growing byte buffer fed by
// queueAudio and drained by the ebiten audio player on its own goroutine.
// Reads that arrive before any data has been queued return silence instead
// of blocking, so playback never stalls emulation.
type audioQueue struct {
	mu      sync.Mutex
	buf     []byte
	maxSize int
}

func newAudioQueue(maxSize int) *audioQueue {
	return &audioQueue{maxSize: maxSize}
}

func (q *audioQueue) write(p []byte) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.buf = append(q.buf, p...)
	if overflow := len(q.buf) - q.maxSize; overflow > 0 {
		q.buf = q.buf[overflow:]
	}
}

func (q *audioQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// Draw copies the PPU's frame buffer into the host image and presents it.
func (g *Game) Draw(screen *ebiten.Image) {
	frameBuffer := g.bus.GetFrameBuffer()
	for i, pixel := range frameBuffer {
		g.pixels[i*4] = byte(pixel >> 16)
		g.pixels[i*4+1] = byte(pixel >> 8)
		g.pixels[i*4+2] = byte(pixel)
		g.pixels[i*4+3] = 0xFF
	}
	g.frameImage.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op.GeoM.Scale(float64(sw)/screenWidth, float64(sh)/screenHeight)
	screen.DrawImage(g.frameImage, op)
}

// Layout reports the emulator's native 256x240 resolution; ebiten scales
// the window around it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// SetControllerButton is a thin passthrough used by headless callers that
// drive input programmatically instead of through the keyboard.
func (g *Game) SetControllerButton(player int, button input.Button, pressed bool) {
	g.bus.SetControllerButton(player, button, pressed)
}

// String reports basic session info: the frame and CPU cycle counts.
func (g *Game) String() string {
	return fmt.Sprintf("nescore frame=%d cycles=%d", g.bus.GetFrameCount(), g.bus.GetCycleCount())
}
