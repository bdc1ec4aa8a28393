package meshing

// BuildIndices returns the triangle list shared by every chunk of the given
// precision, two triangles per grid cell.
func BuildIndices(prec int) []uint32 {
	indices := make([]uint32, 0, prec*prec*6)
	row := uint32(prec + 1)
	for i := 0; i < prec; i++ {
		for j := 0; j < prec; j++ {
			base := uint32(i)*row + uint32(j)
			indices = append(indices,
				base+row, base+1, base,
				base+1, base+row, base+row+1,
			)
		}
	}
	return indices
}

// IndexCount returns the number of indices BuildIndices produces.
func IndexCount(prec int) int {
	return prec * prec * 6
}
