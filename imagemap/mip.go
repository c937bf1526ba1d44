package imagemap

// GenerateMips builds a box-filtered mip chain for im, halving dimensions
// each level until both dimensions reach 1, adapted from the teacher's
// internal/image/mipmap.go downsample step (box filter over 2x2 texel
// blocks, edge texels repeated for odd dimensions).
func GenerateMips(im *ImageMap) {
	cur := im.levels[0]
	for cur.Width() > 1 || cur.Height() > 1 {
		next := downsample(cur)
		im.AddMipLevel(next)
		cur = next
	}
}

func downsample(s Storage) Storage {
	w, h, ch := s.Width(), s.Height(), s.Format().Channels
	nw, nh := max(1, w/2), max(1, h/2)
	dst := NewStorage(s.Format(), nw, nh)
	for y := 0; y < nh; y++ {
		y0 := min(2*y, h-1)
		y1 := min(2*y+1, h-1)
		for x := 0; x < nw; x++ {
			x0 := min(2*x, w-1)
			x1 := min(2*x+1, w-1)
			for c := 0; c < ch; c++ {
				v := (s.GetChannel(x0, y0, c) + s.GetChannel(x1, y0, c) +
					s.GetChannel(x0, y1, c) + s.GetChannel(x1, y1, c)) * 0.25
				dst.SetChannel(x, y, c, v)
			}
		}
	}
	return dst
}
