// Command stilld exposes every still-capable camera on the bus over a unix
// socket, one socket per camera, named after the discovery order: still0.sock,
// still1.sock, and so on.
//
// The wire protocol mirrors a character device. Each request is a fixed
// 8-byte header, a little-endian uint32 operation code followed by a
// little-endian uint32 payload length, then the payload. Each response is a
// little-endian uint32 status (0 or an errno value), a little-endian uint32
// payload length, then the payload. Operation codes below 1226 are the
// daemon's own read/write ops; everything else is passed through to the
// device control dispatcher. A read response with a zero-length payload marks
// the end of a frame.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	uvcstill "github.com/openstill/uvcstill"
)

const (
	opRead  uint32 = 1
	opWrite uint32 = 2
	opStats uint32 = 3
)

// readChunkSize bounds a single read response. Larger client requests are
// clipped; the client loops until the zero-length end-of-frame response.
const readChunkSize = 65536

func main() {
	socketDir := flag.String("socket-dir", "/run/stilld", "directory for the per-camera unix sockets")
	nonblock := flag.Bool("nonblock", false, "serve reads in non-blocking mode")
	exclusive := flag.Bool("exclusive", true, "refuse a second client per camera with EBUSY")

	flag.Parse()

	if err := os.MkdirAll(*socketDir, 0o755); err != nil {
		log.Fatalf("failed to create socket directory: %v", err)
	}

	devices, err := uvcstill.FindStillCameras()
	if err != nil {
		log.Fatalf("failed to enumerate devices: %v", err)
	}
	if len(devices) == 0 {
		log.Fatalf("no video-class USB devices found")
	}

	unix.Umask(0o077)

	var wg sync.WaitGroup
	var listeners []net.Listener
	var cameras []*uvcstill.StillCamera

	for i, dev := range devices {
		name := uvcstill.DeviceName(i)

		udev, err := uvcstill.OpenDevice(dev)
		if err != nil {
			log.Printf("%s: open failed, skipping: %v", name, err)
			continue
		}
		sc, err := uvcstill.NewStillCamera(udev)
		if err != nil {
			log.Printf("%s: no still capture support, skipping: %v", name, err)
			udev.Close()
			continue
		}
		sc.SetExclusive(*exclusive)
		if err := sc.Start(); err != nil {
			log.Printf("%s: failed to start streaming, skipping: %v", name, err)
			sc.Close()
			udev.Close()
			continue
		}

		path := filepath.Join(*socketDir, name+".sock")
		os.Remove(path)
		ln, err := net.Listen("unix", path)
		if err != nil {
			log.Fatalf("%s: failed to listen on %s: %v", name, path, err)
		}
		def := sc.FrameSize()
		log.Printf("%s: serving %s on %s (default %dx%d)", name, dev.Path, path, def.Width, def.Height)

		listeners = append(listeners, ln)
		cameras = append(cameras, sc)

		wg.Add(1)
		go func() {
			defer wg.Done()
			acceptLoop(name, ln, sc, *nonblock)
		}()
	}

	if len(cameras) == 0 {
		log.Fatalf("no camera could be started")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGINT, unix.SIGTERM)
	sig := <-sigCh
	log.Printf("received %s, shutting down", sig)

	for _, ln := range listeners {
		ln.Close()
	}
	wg.Wait()
	for _, sc := range cameras {
		sc.Close()
	}
}

// acceptLoop opens a camera handle per connection. Whether a second
// concurrent client gets a handle or an EBUSY refusal is decided by the
// camera's exclusivity guard.
func acceptLoop(name string, ln net.Listener, sc *uvcstill.StillCamera, nonblock bool) {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			h, err := sc.Open()
			if err != nil {
				writeResponse(conn, errnoFor(err), nil)
				return
			}
			defer h.Close()
			h.SetNonblock(nonblock)
			if err := serve(conn, sc, h); err != nil && !errors.Is(err, io.EOF) {
				log.Printf("%s: connection error: %v", name, err)
			}
		}()
	}
}

func serve(conn net.Conn, sc *uvcstill.StillCamera, h *uvcstill.Handle) error {
	var header [8]byte
	buf := make([]byte, readChunkSize)
	for {
		if _, err := io.ReadFull(conn, header[:]); err != nil {
			return err
		}
		code := binary.LittleEndian.Uint32(header[0:4])
		length := binary.LittleEndian.Uint32(header[4:8])
		if length > readChunkSize {
			return fmt.Errorf("request payload too large: %d", length)
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(conn, payload); err != nil {
			return err
		}

		switch code {
		case opRead:
			want := readChunkSize
			if len(payload) == 4 {
				if req := int(binary.LittleEndian.Uint32(payload)); req > 0 && req < want {
					want = req
				}
			}
			n, err := h.Read(buf[:want])
			if err == io.EOF {
				// zero-length read marks the end of the frame
				if werr := writeResponse(conn, 0, nil); werr != nil {
					return werr
				}
				continue
			}
			if err != nil {
				if werr := writeResponse(conn, errnoFor(err), nil); werr != nil {
					return werr
				}
				continue
			}
			if werr := writeResponse(conn, 0, buf[:n]); werr != nil {
				return werr
			}
		case opStats:
			stats := sc.Stats()
			out := make([]byte, 56)
			for i, v := range []uint64{
				stats.VideoPackets, stats.StillPackets, stats.SkippedPackets,
				stats.ErroredPackets, stats.VideoFrames, stats.StillFrames,
				stats.FailedFrames,
			} {
				binary.LittleEndian.PutUint64(out[i*8:], v)
			}
			if werr := writeResponse(conn, 0, out); werr != nil {
				return werr
			}
		case opWrite:
			if _, err := h.Write(payload); err != nil {
				if werr := writeResponse(conn, errnoFor(err), nil); werr != nil {
					return werr
				}
				continue
			}
			if werr := writeResponse(conn, 0, nil); werr != nil {
				return werr
			}
		default:
			out, err := h.Control(code, payload)
			if err != nil {
				if werr := writeResponse(conn, errnoFor(err), nil); werr != nil {
					return werr
				}
				continue
			}
			if werr := writeResponse(conn, 0, out); werr != nil {
				return werr
			}
		}
	}
}

func writeResponse(conn net.Conn, status uint32, payload []byte) error {
	var header [8]byte
	binary.LittleEndian.PutUint32(header[0:4], status)
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(payload)))
	if _, err := conn.Write(header[:]); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := conn.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func errnoFor(err error) uint32 {
	switch {
	case errors.Is(err, uvcstill.ErrWouldBlock):
		return uint32(unix.EAGAIN)
	case errors.Is(err, uvcstill.ErrFrameError):
		return uint32(unix.EIO)
	case errors.Is(err, uvcstill.ErrBusy):
		return uint32(unix.EBUSY)
	case errors.Is(err, uvcstill.ErrDeviceGone):
		return uint32(unix.EFAULT)
	case errors.Is(err, uvcstill.ErrNotStreaming):
		return uint32(unix.EAGAIN)
	case errors.Is(err, uvcstill.ErrFrameSizeNotSupported):
		return uint32(unix.EINVAL)
	case errors.Is(err, uvcstill.ErrPropertyTooLarge):
		return uint32(unix.ENOMEM)
	case errors.Is(err, uvcstill.ErrInvalidRequestCode):
		return uint32(unix.EINVAL)
	case errors.Is(err, uvcstill.ErrUnknownRequest):
		return uint32(unix.ENOTTY)
	case errors.Is(err, uvcstill.ErrNoCameraTerminal),
		errors.Is(err, uvcstill.ErrNoProcessingUnit),
		errors.Is(err, uvcstill.ErrNoExtensionUnit):
		return uint32(unix.ENODEV)
	default:
		return uint32(unix.EIO)
	}
}
