// Package rig models hierarchical skeletal rigs and resolves which of their
// joints correspond to semantic body roles.
package rig

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// StructuralError reports a rig whose joint graph is not a tree.
type StructuralError struct {
	Reason string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("malformed rig: %s", e.Reason)
}

// Joint is a single bone of a skeletal rig. The parent owns the position of
// its children; Offset is the rest position relative to the parent.
type Joint struct {
	Name     string
	Offset   r3.Vector
	Rotation quat.Number
	Parent   *Joint
	Children []*Joint
}

// NewJoint creates a joint with the given name and an identity rotation.
func NewJoint(name string) *Joint {
	return &Joint{
		Name:     name,
		Rotation: quat.Number{Real: 1},
	}
}

// AddChild attaches a child joint to this joint.
func (j *Joint) AddChild(child *Joint) {
	child.Parent = j
	j.Children = append(j.Children, child)
}

// Rig is a tree of named joints with exactly one root.
type Rig struct {
	Name string
	Root *Joint
}

// Walk visits every joint in deterministic pre-order depth-first order,
// starting from the root. Traversal stops early if visit returns false.
func (r *Rig) Walk(visit func(*Joint) bool) {
	if r == nil || r.Root == nil {
		return
	}
	walkJoint(r.Root, visit)
}

func walkJoint(j *Joint, visit func(*Joint) bool) bool {
	if !visit(j) {
		return false
	}
	for _, child := range j.Children {
		if !walkJoint(child, visit) {
			return false
		}
	}
	return true
}

// JointCount returns the number of joints in the rig.
func (r *Rig) JointCount() int {
	count := 0
	r.Walk(func(*Joint) bool {
		count++
		return true
	})
	return count
}

// Find returns the first joint with the given name in pre-order, or nil.
func (r *Rig) Find(name string) *Joint {
	var found *Joint
	r.Walk(func(j *Joint) bool {
		if j.Name == name {
			found = j
			return false
		}
		return true
	})
	return found
}

// Validate checks the rig's structure. A rig with a nil root is valid and
// simply empty; a rig whose joint graph contains a cycle or a child whose
// parent pointer disagrees with the tree is rejected with a StructuralError.
func (r *Rig) Validate() error {
	if r == nil || r.Root == nil {
		return nil
	}
	if r.Root.Parent != nil {
		return &StructuralError{Reason: "root joint has a parent"}
	}

	seen := make(map[*Joint]bool)
	return checkJoint(r.Root, seen)
}

func checkJoint(j *Joint, seen map[*Joint]bool) error {
	if seen[j] {
		return &StructuralError{Reason: fmt.Sprintf("cycle through joint %q", j.Name)}
	}
	seen[j] = true

	for _, child := range j.Children {
		if child.Parent != j {
			return &StructuralError{Reason: fmt.Sprintf("joint %q has inconsistent parent link", child.Name)}
		}
		if err := checkJoint(child, seen); err != nil {
			return err
		}
	}
	return nil
}
