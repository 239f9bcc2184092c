package pixel

// Image is a rows × cols grid of 8-bit pixels in row-major order.
//
// Pix always has length Cols*Rows. The zero Image is not usable; build one
// with New or FromSlice.
type Image struct {
	Cols int
	Rows int
	Kind Kind
	Pix  []uint8
}

// New allocates a zeroed image of the given kind.
// Returns ErrInvalidSize if cols or rows is not positive.
func New(kind Kind, cols, rows int) (*Image, error) {
	if cols <= 0 || rows <= 0 {
		return nil, ErrInvalidSize
	}
	return &Image{
		Cols: cols,
		Rows: rows,
		Kind: kind,
		Pix:  make([]uint8, cols*rows),
	}, nil
}

// NewBinary allocates a zeroed binary image.
func NewBinary(cols, rows int) (*Image, error) { return New(KindBinary, cols, rows) }

// NewLabel allocates a zeroed label image.
func NewLabel(cols, rows int) (*Image, error) { return New(KindLabel, cols, rows) }

// NewGray allocates a zeroed grayscale image.
func NewGray(cols, rows int) (*Image, error) { return New(KindGray, cols, rows) }

// FromSlice wraps data as an image without copying it. The caller keeps
// ownership of data; writes through the Image are visible in data.
//
// Returns ErrInvalidSize if the dimensions are not positive or
// len(data) != cols*rows.
func FromSlice(kind Kind, cols, rows int, data []uint8) (*Image, error) {
	if cols <= 0 || rows <= 0 || len(data) != cols*rows {
		return nil, ErrInvalidSize
	}
	return &Image{Cols: cols, Rows: rows, Kind: kind, Pix: data}, nil
}

// Len returns the number of pixels.
func (img *Image) Len() int { return img.Cols * img.Rows }

// Index maps (c, r) to the row-major offset r*Cols + c.
func (img *Image) Index(c, r int) int { return r*img.Cols + c }

// InBounds reports whether (c, r) lies inside the image.
func (img *Image) InBounds(c, r int) bool {
	return c >= 0 && c < img.Cols && r >= 0 && r < img.Rows
}

// Get returns the pixel at (c, r), or ErrOutOfBounds.
func (img *Image) Get(c, r int) (uint8, error) {
	if !img.InBounds(c, r) {
		return 0, ErrOutOfBounds
	}
	return img.Pix[img.Index(c, r)], nil
}

// Set writes v at (c, r), or returns ErrOutOfBounds without writing.
func (img *Image) Set(c, r int, v uint8) error {
	if !img.InBounds(c, r) {
		return ErrOutOfBounds
	}
	img.Pix[img.Index(c, r)] = v
	return nil
}

// Pixel returns the pixel at (c, r) without a bounds check.
// Callers must clip their iteration to the image extent.
func (img *Image) Pixel(c, r int) uint8 { return img.Pix[r*img.Cols+c] }

// SetPixel writes v at (c, r) without a bounds check.
func (img *Image) SetPixel(c, r int, v uint8) { img.Pix[r*img.Cols+c] = v }

// Clone returns a deep copy with its own buffer.
func (img *Image) Clone() *Image {
	pix := make([]uint8, len(img.Pix))
	copy(pix, img.Pix)
	return &Image{Cols: img.Cols, Rows: img.Rows, Kind: img.Kind, Pix: pix}
}

// SameSize reports whether other has the same dimensions.
func (img *Image) SameSize(other *Image) bool {
	return other != nil && img.Cols == other.Cols && img.Rows == other.Rows
}

// Fill sets every pixel to v.
func (img *Image) Fill(v uint8) {
	for i := range img.Pix {
		img.Pix[i] = v
	}
}
