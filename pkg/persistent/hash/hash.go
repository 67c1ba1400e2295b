// Package hash contains some common hash functions suitable for use in hash
// maps.
package hash

import "github.com/segmentio/fasthash/fnv1a"

const DJBInit uint32 = 5381

func DJBCombine(acc, h uint32) uint32 {
	return mul33(acc) + h
}

func DJB(hs ...uint32) uint32 {
	acc := DJBInit
	for _, h := range hs {
		acc = DJBCombine(acc, h)
	}
	return acc
}

func UInt32(u uint32) uint32 {
	return u
}

func UInt64(u uint64) uint32 {
	return mul33(uint32(u>>32)) + uint32(u&0xffffffff)
}

// String hashes a string with FNV-1a.
func String(s string) uint32 {
	return fnv1a.HashString32(s)
}

func mul33(u uint32) uint32 {
	return u<<5 + u
}
