package model

import "fmt"

func unknownField(kind, field string) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("%s has no field %q", kind, field), Err: ErrUnknownField}
}

// SetField assigns one scalar field by its JSON name.
func (p *PersonalInfo) SetField(field, value string) error {
	switch field {
	case "firstName":
		p.FirstName = value
	case "lastName":
		p.LastName = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "address":
		p.Address = value
	case "city":
		p.City = value
	case "state":
		p.State = value
	case "zipCode":
		p.ZipCode = value
	case "country":
		p.Country = value
	case "title":
		p.Title = value
	case "summary":
		p.Summary = value
	case "linkedin":
		p.LinkedIn = value
	case "website":
		p.Website = value
	default:
		return unknownField("personal info", field)
	}
	return nil
}

// setSpanField handles startDate and endDate for every dated entry.
func setSpanField(s *Span, field, value string) (bool, error) {
	switch field {
	case "startDate":
		*s = s.WithStart(value)
		return true, nil
	case "endDate":
		next, err := s.WithEnd(value)
		if err != nil {
			return true, err
		}
		*s = next
		return true, nil
	}
	return false, nil
}

func (e *WorkEntry) SetField(field, value string) error {
	if handled, err := setSpanField(&e.Span, field, value); handled {
		return err
	}
	switch field {
	case "company":
		e.Company = value
	case "position":
		e.Position = value
	case "location":
		e.Location = value
	case "description":
		e.Description = value
	default:
		return unknownField("work entry", field)
	}
	return nil
}

func (e *EducationEntry) SetField(field, value string) error {
	if handled, err := setSpanField(&e.Span, field, value); handled {
		return err
	}
	switch field {
	case "institution":
		e.Institution = value
	case "degree":
		e.Degree = value
	case "field":
		e.Field = value
	case "location":
		e.Location = value
	case "description":
		e.Description = value
	case "gpa":
		e.GPA = value
	default:
		return unknownField("education entry", field)
	}
	return nil
}

func (e *ProjectEntry) SetField(field, value string) error {
	if handled, err := setSpanField(&e.Span, field, value); handled {
		return err
	}
	switch field {
	case "name":
		e.Name = value
	case "description":
		e.Description = value
	case "url":
		e.URL = value
	default:
		return unknownField("project", field)
	}
	return nil
}

func (c *Certification) SetField(field, value string) error {
	switch field {
	case "name":
		c.Name = value
	case "issuer":
		c.Issuer = value
	case "date":
		c.Date = value
	case "url":
		c.URL = value
	case "description":
		c.Description = value
	default:
		return unknownField("certification", field)
	}
	return nil
}
