// Package main provides a sink that records applied pose frames to a CSV
// file, one row per joint per frame. Frames arrive as JSON lines on stdin;
// the recording ends when the engine closes the stream.
package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
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
	out := flag.String("out", "recording.csv", "output CSV path")
	flag.Parse()

	f, err := os.Create(*out)
	if err != nil {
		log.Fatalf("failed to create %s: %v", *out, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"seq", "timestamp", "rig", "tracked", "role", "joint", "qw", "qx", "qy", "qz"}
	if err := w.Write(header); err != nil {
		log.Fatalf("failed to write header: %v", err)
	}

	log.Printf("recording to %s", *out)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	frames := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var frame Frame
		if err := json.Unmarshal(line, &frame); err != nil {
			log.Printf("skipping malformed frame: %v", err)
			continue
		}

		for _, j := range frame.Joints {
			row := []string{
				strconv.FormatUint(frame.Seq, 10),
				strconv.FormatInt(frame.Timestamp, 10),
				frame.Rig,
				strconv.FormatBool(frame.Tracked),
				j.Role,
				j.Joint,
				strconv.FormatFloat(j.Quat[0], 'f', -1, 64),
				strconv.FormatFloat(j.Quat[1], 'f', -1, 64),
				strconv.FormatFloat(j.Quat[2], 'f', -1, 64),
				strconv.FormatFloat(j.Quat[3], 'f', -1, 64),
			}
			if err := w.Write(row); err != nil {
				log.Fatalf("failed to write row: %v", err)
			}
		}
		frames++
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin read failed: %v", err)
	}

	w.Flush()
	log.Printf("recorded %d frames", frames)
}
