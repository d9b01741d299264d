// Package ports reads the serial consoles of a split keyboard's two
// halves and merges them into one line stream.
package ports

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

const baudRate = 9600

// Open opens one serial port for reading.
func Open(portPath string) (io.Reader, func(), error) {
	port, err := serial.Open(portPath, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, nil, fmt.Errorf("could not open port %s: %w", portPath, err)
	}

	closer := func() {
		if err := port.Close(); err != nil {
			slog.Error("could not close port", "path", portPath, "error", err)
		}
	}

	// Halves sit silent until a key is hit; don't time out on them.
	if err := port.SetReadTimeout(10 * time.Hour); err != nil {
		closer()

		return nil, nil, fmt.Errorf("could not set read timeout on %s: %w", portPath, err)
	}

	return port, closer, nil
}

// ReadLines pumps lines from a reader into a channel, closing it on EOF.
func ReadLines(r io.Reader) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			out <- scanner.Text()
		}
	}()

	return out
}

// ReadSplitHalves merges the line streams of both halves. The returned
// channel closes when both inputs are exhausted.
func ReadSplitHalves(left, right io.Reader) <-chan string {
	out := make(chan string)

	var wg sync.WaitGroup

	for _, half := range []io.Reader{left, right} {
		wg.Add(1)

		go func() {
			defer wg.Done()

			scanner := bufio.NewScanner(half)
			for scanner.Scan() {
				out <- scanner.Text()
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// OpenSplit opens both halves and merges their output.
func OpenSplit(leftPath, rightPath string) (<-chan string, func(), error) {
	left, closeLeft, err := Open(leftPath)
	if err != nil {
		return nil, nil, err
	}

	right, closeRight, err := Open(rightPath)
	if err != nil {
		closeLeft()

		return nil, nil, err
	}

	closer := func() {
		closeLeft()
		closeRight()
	}

	return ReadSplitHalves(left, right), closer, nil
}

// LooksLikeKeyboardDevice reports whether a device path smells like a
// keyboard half's USB console.
func LooksLikeKeyboardDevice(devicePath string) bool {
	return strings.HasPrefix(path.Base(devicePath), "tty.usbmodem")
}

// AvailableDevices lists serial ports that look like keyboard halves.
func AvailableDevices() ([]string, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("could not list serial ports: %w", err)
	}

	result := make([]string, 0, len(names))

	for _, name := range names {
		if LooksLikeKeyboardDevice(name) {
			result = append(result, name)
		}
	}

	return result, nil
}
