// Package main provides a sink that forwards applied pose frames to a
// Virtual Motion Capture receiver over UDP. Frames arrive as JSON lines on
// stdin and leave as JSON datagrams.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"log"
	"net"
	"os"
)

// Frame mirrors the engine's wire format for one applied pose.
type Frame struct {
	Seq       uint64       `json:"seq"`
	Timestamp int64        `json:"timestamp"`
	Rig       string       `json:"rig"`
	Tracked   bool         `json:"tracked"`
	Joints    []JointFrame `json:"joints"`
	Root      *[3]float64  `json:"root,omitempty"`
}

// JointFrame is one joint's applied rotation.
type JointFrame struct {
	Role  string     `json:"role"`
	Joint string     `json:"joint"`
	Quat  [4]float64 `json:"quat"`
}

func main() {
	addr := flag.String("addr", "127.0.0.1:39539", "UDP address of the motion capture receiver")
	flag.Parse()

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		log.Fatalf("failed to dial %s: %v", *addr, err)
	}
	defer conn.Close()

	log.Printf("forwarding pose frames to %s", *addr)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// Validate before forwarding so a corrupt line doesn't reach
		// the receiver
		var frame Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			log.Printf("skipping malformed frame: %v", err)
			continue
		}

		if _, err := conn.Write(line); err != nil {
			log.Printf("udp write failed: %v", err)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin read failed: %v", err)
	}
}
