// Package favorites holds the rules of the user ↔ movie favorite relation.
//
// The relation has set semantics: a movie id appears at most once in a user's
// list. Adding a present id is a no-op success, removing an absent id fails
// with ErrNotFavorite.
package favorites

import (
	"errors"
	"fmt"
	"slices"
)

// ErrNotFavorite is returned when removing a movie that is not in the list.
var ErrNotFavorite = errors.New("movie is not a favorite")

// Action identifies a transition of the favorite relation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
)

// Apply returns the list that results from applying action for movieID to ids.
// The input slice is never modified.
func Apply(ids []string, action Action, movieID string) ([]string, error) {
	switch action {
	case ActionAdd:
		if slices.Contains(ids, movieID) {
			return slices.Clone(ids), nil
		}
		return append(slices.Clone(ids), movieID), nil
	case ActionRemove:
		if !slices.Contains(ids, movieID) {
			return nil, fmt.Errorf("%w: %s", ErrNotFavorite, movieID)
		}
		return slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == movieID }), nil
	default:
		return nil, fmt.Errorf("unknown favorite action: %s", action)
	}
}
