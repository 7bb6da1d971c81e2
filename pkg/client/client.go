package client

type Client struct {
	Id   int
	Name string
	// Reference is the optional short code used in generated order-of-service names.
	Reference string
}

// FindById returns the client with the given id from clients.
func FindById(clients []Client, id int) (Client, bool) {
	if id == 0 {
		return Client{}, false
	}
	for _, c := range clients {
		if c.Id == id {
			return c, true
		}
	}
	return Client{}, false
}
