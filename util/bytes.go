package util

func CloneBytes(bz []byte) []byte {
	bz2 := make([]byte, len(bz))
	copy(bz2, bz)
	return bz2
}
