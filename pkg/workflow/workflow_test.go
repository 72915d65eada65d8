package workflow

// Hand-rolled fakes for the small single-method collaborators. The storage and
// scheduler mocks are generated, these are simpler to read inline.

import (
	"context"
	"time"

	"github.com/armand/immo-contracts/pkg/models"
	"github.com/armand/immo-contracts/pkg/template"
)

type fakeRenderer struct {
	templates []string
	err       error
}

func (f *fakeRenderer) Render(ctx context.Context, templateName string, data map[string]any) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.templates = append(f.templates, templateName)
	return []byte("%PDF-1.7 fake"), nil
}

type fakeFiles struct {
	stored   []string
	deleted  []string
	storeErr error
}

func (f *fakeFiles) Store(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	f.stored = append(f.stored, path)
	return path, nil
}

func (f *fakeFiles) Delete(ctx context.Context, path string) error {
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeFiles) URL(ctx context.Context, path string) (string, error) {
	return "https://files.local/" + path, nil
}

type sentSMS struct {
	To      string
	Message string
}

type fakeSMS struct {
	sent []sentSMS
	err  error
}

func (f *fakeSMS) Send(ctx context.Context, phoneNumber, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentSMS{To: phoneNumber, Message: message})
	return nil
}

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func locationContract() *models.Contract {
	data, err := template.Build(template.Input{
		Type:     models.ContractLocation,
		Property: template.Property{Id: "p1", Title: "Apartment T3", Address: "12 Rue des Manguiers", City: "Douala"},
		Landlord: template.Party{UserId: "landlord-1", FullName: "Alice Kamga", Phone: "+237670000001"},
		Tenant:   &template.Party{UserId: "tenant-1", FullName: "Benoit Essomba", Phone: "+237670000002"},
		Terms:    template.Terms{MonthlyRent: 500_000},
	})
	if err != nil {
		panic(err)
	}
	return &models.Contract{
		Id:           "c1",
		PropertyId:   "p1",
		LandlordId:   "landlord-1",
		TenantId:     "tenant-1",
		Type:         models.ContractLocation,
		Status:       models.ContractSent,
		TemplateData: data,
		Version:      1,
		PdfPath:      "contracts/c1/v1.pdf",
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}
