package rig

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseBVH reads the HIERARCHY section of a BVH file and returns the joint
// tree it declares. CHANNELS declarations and the MOTION section are
// ignored; only the skeleton structure and rest offsets are kept. End Site
// markers do not become joints.
func ParseBVH(name string, r io.Reader) (*Rig, error) {
	scanner := bufio.NewScanner(r)

	var root *Joint
	var stack []*Joint
	inEndSite := false
	sawHierarchy := false

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		keyword := strings.ToUpper(fields[0])

		switch keyword {
		case "HIERARCHY":
			sawHierarchy = true

		case "ROOT", "JOINT":
			if !sawHierarchy {
				return nil, fmt.Errorf("line %d: %s before HIERARCHY", lineNo, keyword)
			}
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: %s without a name", lineNo, keyword)
			}
			joint := NewJoint(strings.Join(fields[1:], " "))
			if keyword == "ROOT" {
				if root != nil {
					return nil, &StructuralError{Reason: "multiple ROOT declarations"}
				}
				root = joint
			} else {
				if len(stack) == 0 {
					return nil, fmt.Errorf("line %d: JOINT outside ROOT", lineNo)
				}
				stack[len(stack)-1].AddChild(joint)
			}
			stack = append(stack, joint)

		case "END":
			// "End Site" block; its offset is not a joint
			inEndSite = true

		case "OFFSET":
			if inEndSite {
				continue
			}
			if len(stack) == 0 {
				return nil, fmt.Errorf("line %d: OFFSET outside a joint", lineNo)
			}
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: OFFSET needs 3 values", lineNo)
			}
			joint := stack[len(stack)-1]
			vals := make([]float64, 3)
			for i, f := range fields[1:] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad OFFSET value %q: %w", lineNo, f, err)
				}
				vals[i] = v
			}
			joint.Offset.X, joint.Offset.Y, joint.Offset.Z = vals[0], vals[1], vals[2]

		case "CHANNELS":
			// Channel layout is only relevant for MOTION playback

		case "{":

		case "}":
			if inEndSite {
				inEndSite = false
				continue
			}
			if len(stack) == 0 {
				return nil, fmt.Errorf("line %d: unbalanced closing brace", lineNo)
			}
			stack = stack[:len(stack)-1]

		case "MOTION":
			// Skeleton is complete; frame data is not our concern
			if root == nil {
				return nil, &StructuralError{Reason: "no ROOT joint declared"}
			}
			return &Rig{Name: name, Root: root}, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read bvh: %w", err)
	}
	if !sawHierarchy {
		return nil, fmt.Errorf("not a BVH file: missing HIERARCHY")
	}
	if root == nil {
		return nil, &StructuralError{Reason: "no ROOT joint declared"}
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unbalanced braces: %d joints left open", len(stack))
	}

	return &Rig{Name: name, Root: root}, nil
}
