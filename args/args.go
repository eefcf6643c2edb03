// Package args turns "key value key value ..." command-line tokens into a
// lookup table, the calling convention of player status hooks.
package args

import (
	"fmt"
	"sort"
	"strings"
)

const (
	KeyArtist = "artist"
	KeyTitle  = "title"
	KeyAlbum  = "album"
)

// Set maps each key token to the token following it.
type Set map[string]string

// OddArgumentsError is returned when a key has no value.
type OddArgumentsError struct {
	Count   int
	LastKey string
}

func (e *OddArgumentsError) Error() string {
	return fmt.Sprintf("odd number of arguments (%d): %q has no value", e.Count, e.LastKey)
}

// MissingFieldError is returned when a required key is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return "missing required argument: " + e.Field
}

// Parse pairs adjacent tokens. When a key repeats, the last value wins.
func Parse(tokens []string) (Set, error) {
	if len(tokens)%2 != 0 {
		return nil, &OddArgumentsError{Count: len(tokens), LastKey: tokens[len(tokens)-1]}
	}
	set := make(Set, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		set[tokens[i]] = tokens[i+1]
	}
	return set, nil
}

// Get returns the value for key and whether it was given.
func (s Set) Get(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Require returns the value for key or a MissingFieldError.
func (s Set) Require(key string) (string, error) {
	v, ok := s[key]
	if !ok {
		return "", &MissingFieldError{Field: key}
	}
	return v, nil
}

func (s Set) keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String lists the pairs as "key=value", sorted by key.
func (s Set) String() string {
	parts := make([]string, 0, len(s))
	for _, k := range s.keys() {
		parts = append(parts, k+"="+s[k])
	}
	return strings.Join(parts, " ")
}

// TrackArgs are the fields needed to build an away message.
type TrackArgs struct {
	Artist string
	Title  string
	Album  string
}

// Track validates s: artist and title are required, album is optional.
// An empty value counts as given.
func (s Set) Track() (TrackArgs, error) {
	artist, err := s.Require(KeyArtist)
	if err != nil {
		return TrackArgs{}, err
	}
	title, err := s.Require(KeyTitle)
	if err != nil {
		return TrackArgs{}, err
	}
	album, _ := s.Get(KeyAlbum)
	return TrackArgs{Artist: artist, Title: title, Album: album}, nil
}
