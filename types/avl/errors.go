package avl

import (
	"errors"
)

var (
	ErrTreeNodeDuplicate = errors.New("tree node is duplicated")
	ErrTreeNodeNotFound  = errors.New("tree node is not found")
)
