package rig

import (
	"log"
	"strings"
)

// RoleMapping associates every role with the joint that plays it in one
// specific rig instance, or nil for roles without a matching joint. Built
// once per rig by Resolve and read-only afterwards.
type RoleMapping map[Role]*Joint

// Joint returns the joint mapped to the role and whether one is mapped.
func (m RoleMapping) Joint(role Role) (*Joint, bool) {
	j, ok := m[role]
	if !ok || j == nil {
		return nil, false
	}
	return j, true
}

// MappedCount returns the number of roles with a resolved joint.
func (m RoleMapping) MappedCount() int {
	count := 0
	for _, j := range m {
		if j != nil {
			count++
		}
	}
	return count
}

// rolePattern is one keyword clause for a role: the name must contain every
// entry of each group in all (a group matches when any of its alternatives
// is a substring) and none of the entries in none.
type rolePattern struct {
	all  [][]string
	none []string
}

// Keyword sets per role. Matching is case-insensitive substring matching
// against the joint's display name. Side words ("left", "l_", ...) are
// handled separately by sideMatches.
var rolePatterns = map[Role][]rolePattern{
	RoleHead:          {{all: [][]string{{"head", "skull"}}, none: []string{"headtop", "top_end"}}},
	RoleNeck:          {{all: [][]string{{"neck"}}}},
	RoleSpine:         {{all: [][]string{{"spine", "chest", "torso", "upperbody", "upper_body"}}}},
	RoleLeftShoulder:  {{all: [][]string{{"shoulder", "clavicle", "collar"}}}},
	RoleRightShoulder: {{all: [][]string{{"shoulder", "clavicle", "collar"}}}},
	RoleLeftUpperArm:  {{all: [][]string{{"arm"}}, none: []string{"fore", "lower", "hand", "shoulder", "finger"}}},
	RoleRightUpperArm: {{all: [][]string{{"arm"}}, none: []string{"fore", "lower", "hand", "shoulder", "finger"}}},
	RoleLeftForearm: {
		{all: [][]string{{"forearm", "fore_arm"}}},
		{all: [][]string{{"arm"}, {"lower"}}},
		{all: [][]string{{"elbow"}}},
	},
	RoleRightForearm: {
		{all: [][]string{{"forearm", "fore_arm"}}},
		{all: [][]string{{"arm"}, {"lower"}}},
		{all: [][]string{{"elbow"}}},
	},
	RoleLeftHand:  {{all: [][]string{{"hand", "wrist"}}, none: fingerWords}},
	RoleRightHand: {{all: [][]string{{"hand", "wrist"}}, none: fingerWords}},
	RoleLeftHip:   {{all: [][]string{{"hip", "pelvis"}}}},
	RoleRightHip:  {{all: [][]string{{"hip", "pelvis"}}}},
	RoleLeftThigh: {
		{all: [][]string{{"upleg", "up_leg", "thigh", "upperleg", "upper_leg"}}},
		{all: [][]string{{"leg"}, {"up"}}},
	},
	RoleRightThigh: {
		{all: [][]string{{"upleg", "up_leg", "thigh", "upperleg", "upper_leg"}}},
		{all: [][]string{{"leg"}, {"up"}}},
	},
	RoleLeftShin: {
		{all: [][]string{{"shin", "calf", "knee", "lowerleg", "lower_leg", "lowleg"}}},
		{all: [][]string{{"leg"}}, none: []string{"up", "foot", "toe"}},
	},
	RoleRightShin: {
		{all: [][]string{{"shin", "calf", "knee", "lowerleg", "lower_leg", "lowleg"}}},
		{all: [][]string{{"leg"}}, none: []string{"up", "foot", "toe"}},
	},
	RoleLeftFoot:    {{all: [][]string{{"foot", "ankle"}}, none: []string{"toe"}}},
	RoleRightFoot:   {{all: [][]string{{"foot", "ankle"}}, none: []string{"toe"}}},
	RoleLeftThumb:   {{all: [][]string{{"thumb"}}}},
	RoleRightThumb:  {{all: [][]string{{"thumb"}}}},
	RoleLeftIndex:   {{all: [][]string{{"index", "point"}}}},
	RoleRightIndex:  {{all: [][]string{{"index", "point"}}}},
	RoleLeftMiddle:  {{all: [][]string{{"middle"}}}},
	RoleRightMiddle: {{all: [][]string{{"middle"}}}},
	RoleLeftRing:    {{all: [][]string{{"ring"}}}},
	RoleRightRing:   {{all: [][]string{{"ring"}}}},
	RoleLeftPinky:   {{all: [][]string{{"pinky", "little"}}}},
	RoleRightPinky:  {{all: [][]string{{"pinky", "little"}}}},
}

var fingerWords = []string{"thumb", "index", "middle", "ring", "pinky", "little", "finger", "point"}

// Resolve builds the role mapping for a rig by matching lower-cased joint
// names against per-role keyword sets. Joints are visited in pre-order,
// roles in priority order; the first joint matching a role wins it and
// later matches for the same role are ignored. Roles without a matching
// joint stay nil. A rig with zero joints yields an all-nil mapping; a rig
// whose joint graph is not a tree is rejected with a StructuralError.
func Resolve(r *Rig) (RoleMapping, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	mapping := make(RoleMapping, NumRoles)
	for _, role := range Roles() {
		mapping[role] = nil
	}

	r.Walk(func(j *Joint) bool {
		name := strings.ToLower(j.Name)
		for _, role := range Roles() {
			if mapping[role] != nil {
				continue
			}
			if matchesRole(name, role) {
				mapping[role] = j
			}
		}
		return true
	})

	return mapping, nil
}

// ApplyOverrides replaces mapping entries with joints named explicitly by
// the caller. Overrides naming a joint absent from the rig are ignored.
// Diagnostics only; the returned mapping is the single source of truth.
func (m RoleMapping) ApplyOverrides(r *Rig, overrides map[Role]string) {
	for role, name := range overrides {
		if role < 0 || role >= NumRoles {
			continue
		}
		joint := r.Find(name)
		if joint == nil {
			log.Printf("role override %s -> %q: no such joint", role, name)
			continue
		}
		m[role] = joint
	}
}

func matchesRole(name string, role Role) bool {
	if side := role.Side(); side != SideNone && !sideMatches(name, side) {
		return false
	}

	for _, pat := range rolePatterns[role] {
		if pat.matches(name) {
			return true
		}
	}
	return false
}

func (p rolePattern) matches(name string) bool {
	for _, group := range p.all {
		if !containsAny(name, group) {
			return false
		}
	}
	for _, word := range p.none {
		if strings.Contains(name, word) {
			return false
		}
	}
	return true
}

func containsAny(name string, words []string) bool {
	for _, w := range words {
		if strings.Contains(name, w) {
			return true
		}
	}
	return false
}

// sideMatches reports whether a lower-cased joint name carries the given
// side marker: a "left"/"right" word, an "l_"/"r_" prefix style, or a
// ".l"/"_l" suffix style as used by Blender-authored rigs.
func sideMatches(name string, side Side) bool {
	var word string
	var letter byte
	switch side {
	case SideLeft:
		word, letter = "left", 'l'
	case SideRight:
		word, letter = "right", 'r'
	default:
		return true
	}

	if strings.Contains(name, word) {
		return true
	}
	if strings.HasPrefix(name, string(letter)+"_") {
		return true
	}
	if strings.HasSuffix(name, "."+string(letter)) || strings.HasSuffix(name, "_"+string(letter)) {
		return true
	}
	return false
}
