package helper

import (
	"github.com/mitchellh/hashstructure"
)

// MaxInt returns the largest int from a variable length list of ints.
func MaxInt(values ...int) int {
	max := values[0]
	for _, i := range values[1:] {
		if i > max {
			max = i
		}
	}

	return max
}

// MinInt returns the smallest int from a variable length list of ints.
func MinInt(values ...int) int {
	min := values[0]
	for _, i := range values[1:] {
		if i < min {
			min = i
		}
	}
	return min
}

// CeilDiv divides a by b and rounds the result up to the nearest whole
// number. The divisor must be positive.
func CeilDiv(a, b int) int {
	return (a + b - 1) / b
}

// StringInSlice checks whether a string exists in a slice of strings.
func StringInSlice(s string, list []string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// HasObjectChanged compares two objects of the same type to determine whether
// they differ, allowing cheap change detection between evaluation cycles.
func HasObjectChanged(objectA, objectB interface{}) (changed bool, err error) {
	hashA, err := hashstructure.Hash(objectA, nil)
	if err != nil {
		return false, err
	}

	hashB, err := hashstructure.Hash(objectB, nil)
	if err != nil {
		return false, err
	}

	if hashA != hashB {
		changed = true
	}

	return changed, nil
}
