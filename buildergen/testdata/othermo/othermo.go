package othermo

type Thing struct {
	ID int
}
