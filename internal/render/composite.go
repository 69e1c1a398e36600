package render

import (
	"image"
	"image/color"
)

// blendMode is how a coverage mask is combined with a layer.
type blendMode int

const (
	// blendOver paints the source over the destination.
	blendOver blendMode = iota
	// blendMultiply multiplies source and destination where both exist,
	// like the separable multiply mode of canvas compositing.
	blendMultiply
	// blendErase removes destination alpha in proportion to coverage
	// (destination-out). The source color is irrelevant.
	blendErase
)

// compositeMask combines c, modulated by mask coverage and opacity, into
// dst over the rectangle r. mask is indexed from r.Min. dst holds
// premultiplied pixels.
func compositeMask(dst *image.RGBA, r image.Rectangle, mask *image.Alpha, c color.NRGBA, opacity float64, mode blendMode) {
	origin := r.Min
	r = r.Intersect(dst.Bounds())
	cr, cg, cb := float64(c.R)/255, float64(c.G)/255, float64(c.B)/255
	ca := float64(c.A) / 255 * opacity
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := mask.AlphaAt(x-origin.X+mask.Rect.Min.X, y-origin.Y+mask.Rect.Min.Y).A
			if m == 0 {
				continue
			}
			cov := float64(m) / 255
			i := dst.PixOffset(x, y)
			px := dst.Pix[i : i+4 : i+4]
			dr, dg, db, da := float64(px[0])/255, float64(px[1])/255, float64(px[2])/255, float64(px[3])/255

			switch mode {
			case blendErase:
				k := 1 - cov
				dr, dg, db, da = dr*k, dg*k, db*k, da*k
			case blendMultiply:
				sa := ca * cov
				sr, sg, sb := cr*sa, cg*sa, cb*sa
				dr = sr*dr + sr*(1-da) + dr*(1-sa)
				dg = sg*dg + sg*(1-da) + dg*(1-sa)
				db = sb*db + sb*(1-da) + db*(1-sa)
				da = sa + da - sa*da
			default:
				sa := ca * cov
				k := 1 - sa
				dr = cr*sa + dr*k
				dg = cg*sa + dg*k
				db = cb*sa + db*k
				da = sa + da*k
			}
			px[0], px[1], px[2], px[3] = unit8(dr), unit8(dg), unit8(db), unit8(da)
		}
	}
}

func unit8(v float64) uint8 {
	return clamp8(v * 255)
}
