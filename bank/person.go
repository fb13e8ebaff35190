package bank

// Person is the identity shared by clients and cashiers.
type Person struct {
	id   int
	name string
}

// ID returns the person's ID.
func (p Person) ID() int {
	return p.id
}

// Name returns the person's name.
func (p Person) Name() string {
	return p.name
}
