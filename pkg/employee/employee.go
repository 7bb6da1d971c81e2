package employee

type Employee struct {
	Id   int
	Name string
	Role string
}

func FindById(employees []Employee, id int) (Employee, bool) {
	for _, e := range employees {
		if id != 0 && e.Id == id {
			return e, true
		}
	}
	return Employee{}, false
}
