package raster

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/watercourse/gosv/config"
	"github.com/watercourse/gosv/fault"
)

// nimrodHeader is the fixed 512-byte header, partitioned as the format
// documents it: general int16s, general float32s, data-specific
// float32s, characters, then data-specific int16s.
type nimrodHeader struct {
	H1 [31]int16
	H2 [28]float32
	H3 [45]float32
	H4 [56]byte
	H5 [51]int16
}

// LoadNIMROD reads a big-endian NIMROD radar raster. Only top-left
// origin NG grids are accepted; the optional `bbox` key crops by pixel
// index. Rows are stored bottom-up to match the returned south-west
// anchored transform.
func LoadNIMROD(path string, conf *config.Config) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "could not open NIMROD data file %s", path)
	}
	defer f.Close()

	var bbox [4]float64
	haveBBox := false
	if conf.Count("bbox") > 0 {
		if conf.Count("bbox") > 1 {
			return nil, fault.New(fault.ConfigurationError,
				"only one bounding box can be applied to a NIMROD data file")
		}
		bb, err := conf.GetString("bbox")
		if err != nil {
			return nil, err
		}
		vals, err := config.SplitFloats(bb, 4)
		if err != nil {
			return nil, err
		}
		copy(bbox[:], vals)
		if bbox[2] <= bbox[0] {
			return nil, fault.New(fault.ConfigurationError,
				"bounding box has negative x-dimension: %g <= %g", bbox[2], bbox[0])
		}
		if bbox[3] <= bbox[1] {
			return nil, fault.New(fault.ConfigurationError,
				"bounding box has negative y-dimension: %g <= %g", bbox[3], bbox[1])
		}
		haveBBox = true
	}

	var blockSize uint32
	if err := binary.Read(f, binary.BigEndian, &blockSize); err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD file %s", path)
	}
	if blockSize != 512 {
		return nil, fault.New(fault.IOFailure,
			"expected header size indicator of 512, got %d", blockSize)
	}

	var hdr nimrodHeader
	if err := binary.Read(f, binary.BigEndian, &hdr); err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD header in %s", path)
	}

	if err := binary.Read(f, binary.BigEndian, &blockSize); err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD file %s", path)
	}
	if blockSize != 512 {
		return nil, fault.New(fault.IOFailure,
			"expected header size indicator of 512, got %d", blockSize)
	}

	if err := binary.Read(f, binary.BigEndian, &blockSize); err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD file %s", path)
	}

	nrows := uint64(hdr.H1[15])
	ncols := uint64(hdr.H1[16])
	if nrows == 0 || ncols == 0 {
		return nil, fault.New(fault.IOFailure, "NIMROD grid is empty")
	}
	n := int(nrows * ncols)

	dataType := hdr.H1[11]
	bpp := hdr.H1[12]
	buffer := make([]float32, n)
	var nodata float32

	switch dataType {
	case 0:
		if bpp != 4 {
			return nil, fault.New(fault.UnsupportedGeometry,
				"unexpected bpp for real NIMROD data: %d", bpp)
		}
		raw := make([]float32, n)
		if err := binary.Read(f, binary.BigEndian, raw); err != nil {
			return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD data in %s", path)
		}
		copy(buffer, raw)
		nodata = hdr.H2[6]
	case 1:
		switch bpp {
		case 2:
			raw := make([]int16, n)
			if err := binary.Read(f, binary.BigEndian, raw); err != nil {
				return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD data in %s", path)
			}
			for i, v := range raw {
				buffer[i] = float32(v)
			}
		case 4:
			raw := make([]int32, n)
			if err := binary.Read(f, binary.BigEndian, raw); err != nil {
				return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD data in %s", path)
			}
			for i, v := range raw {
				buffer[i] = float32(v)
			}
		default:
			return nil, fault.New(fault.UnsupportedGeometry,
				"unexpected bpp for integer NIMROD data: %d", bpp)
		}
		nodata = float32(hdr.H1[24])
	case 2:
		if bpp != 1 {
			return nil, fault.New(fault.UnsupportedGeometry,
				"unexpected bpp for char NIMROD data: %d", bpp)
		}
		raw := make([]byte, n)
		if _, err := io.ReadFull(f, raw); err != nil {
			return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD data in %s", path)
		}
		for i, v := range raw {
			buffer[i] = float32(v)
		}
		nodata = float32(hdr.H1[24])
	default:
		return nil, fault.New(fault.UnsupportedGeometry,
			"unexpected NIMROD data type: %d", dataType)
	}

	var trailer uint32
	if err := binary.Read(f, binary.BigEndian, &trailer); err != nil {
		return nil, fault.Wrap(fault.IOFailure, err, "truncated NIMROD file %s", path)
	}
	if trailer != blockSize {
		return nil, fault.New(fault.IOFailure,
			"expected block size indicator matching %d, got %d", blockSize, trailer)
	}

	// Grid origin corner; only top-left grids are supported.
	if hdr.H1[14] != 0 {
		return nil, fault.New(fault.UnsupportedGeometry,
			"NIMROD grid type %d not supported (NG only)", hdr.H1[14])
	}
	switch hdr.H1[23] {
	case 0:
		// top-left
	case 1, 2, 3:
		return nil, fault.New(fault.UnsupportedGeometry,
			"NIMROD grid origin location %d not supported (top-left only)", hdr.H1[23])
	default:
		return nil, fault.New(fault.UnsupportedGeometry,
			"unknown NIMROD grid origin location %d", hdr.H1[23])
	}

	px := float64(hdr.H2[5]) // pixel x size
	py := float64(hdr.H2[3]) // pixel y size
	// Origin coordinates reference the top-left pixel centre.
	llcX := float64(hdr.H2[4]) - 0.5*px
	llcY := float64(hdr.H2[2]) + (0.5-float64(nrows))*py
	urcY := float64(hdr.H2[2]) + 0.5*py

	// Crop window in pixel indices (defaults to the whole grid).
	ulcX, ulcY := uint64(0), uint64(0)
	lrcX, lrcY := ncols-1, nrows-1
	if haveBBox {
		clampPx := func(v float64, n uint64, def uint64) uint64 {
			if v < 0 || v >= float64(n) {
				return def
			}
			return uint64(v)
		}
		ulcX = clampPx((bbox[0]-llcX)/px, ncols, 0)
		ulcY = clampPx((urcY-bbox[3])/py, nrows, 0)
		lrcX = clampPx((bbox[2]-llcX)/px, ncols, ncols-1)
		lrcY = clampPx((urcY-bbox[1])/py, nrows, nrows-1)
	}
	outCols := 1 + lrcX - ulcX
	outRows := 1 + lrcY - ulcY

	// Flip rows so row 0 is the southernmost, matching the transform.
	values := make([]float32, outCols*outRows)
	for i := uint64(0); i < outRows; i++ {
		srcRow := ulcY + (outRows - 1 - i)
		for j := uint64(0); j < outCols; j++ {
			values[i*outCols+j] = buffer[srcRow*ncols+ulcX+j]
		}
	}

	gt := [6]float64{
		llcX + float64(ulcX)*px,
		px,
		0.0,
		llcY + float64(nrows-1-lrcY)*py,
		0.0,
		py,
	}

	if conf.Bool("verbose", false) {
		log.WithFields(log.Fields{
			"validity": fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
				hdr.H1[0], hdr.H1[1], hdr.H1[2], hdr.H1[3], hdr.H1[4], hdr.H1[5]),
			"grid":   fmt.Sprintf("%d×%d", ncols, nrows),
			"origin": fmt.Sprintf("%g, %g", hdr.H2[4], hdr.H2[2]),
			"pixel":  fmt.Sprintf("%g, %g", px, py),
			"units":  string(hdr.H4[:8]),
			"source": string(hdr.H4[8 : 8+24]),
			"field":  string(hdr.H4[8+24 : 8+24+24]),
		}).Info("Read NIMROD data file")
	}

	return NewField(values, outCols, outRows, gt, nodata)
}
