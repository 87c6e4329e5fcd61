package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
)

func adminActor() *domain.User {
	role := domain.Role{ID: "role-admin", Name: domain.RoleAdmin}
	return &domain.User{ID: "admin-1", Role: &role}
}

func managerActor(id string) *domain.User {
	role := domain.Role{ID: "role-manager", Name: domain.RoleManager}
	return &domain.User{ID: id, Role: &role}
}

type customerFixture struct {
	svc       *CustomerService
	customers *stubCustomerRepo
	documents *stubDocumentRepo
	files     *stubDocumentStore
	events    *recordingPublisher
}

func newCustomerFixture(t *testing.T, seed ...domain.Customer) *customerFixture {
	t.Helper()
	f := &customerFixture{
		customers: newStubCustomerRepo(seed...),
		documents: newStubDocumentRepo(),
		files:     newStubDocumentStore(),
		events:    &recordingPublisher{},
	}
	f.svc = NewCustomerService(f.customers, f.documents, f.files, f.events, testLogger(t))
	return f
}

func validCustomerInput() CustomerInput {
	return CustomerInput{
		FirstName:    "Nimal",
		LastName:     "Perera",
		Email:        "nimal@example.com",
		Phone:        "+94 77 123 4567",
		BusinessName: "Perera Traders",
	}
}

func TestCustomerCreateDefaultsCountry(t *testing.T) {
	f := newCustomerFixture(t)

	created, err := f.svc.Create(context.Background(), managerActor("mgr-1"), validCustomerInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.Country != domain.DefaultCustomerCountry {
		t.Errorf("country = %q, want %q", created.Country, domain.DefaultCustomerCountry)
	}
	if created.CreatedBy != "mgr-1" {
		t.Errorf("created_by = %q, want mgr-1", created.CreatedBy)
	}
	if len(f.events.customerEvents) != 1 || f.events.customerEvents[0].Change != domain.CustomerCreated {
		t.Error("created event not published")
	}
}

func TestCustomerCreateDuplicateEmail(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "nimal@example.com", CreatedBy: "mgr-1"})

	if _, err := f.svc.Create(context.Background(), adminActor(), validCustomerInput()); !errors.Is(err, ErrDuplicateCustomer) {
		t.Fatalf("Create error = %v, want ErrDuplicateCustomer", err)
	}
}

func TestCustomerVisibilityScopedToCreator(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"})

	if _, err := f.svc.Get(context.Background(), managerActor("mgr-1"), "cust-1"); err != nil {
		t.Fatalf("creator cannot see own customer: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), adminActor(), "cust-1"); err != nil {
		t.Fatalf("admin cannot see customer: %v", err)
	}
	// Another manager gets not-found, not forbidden.
	if _, err := f.svc.Get(context.Background(), managerActor("mgr-2"), "cust-1"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("Get error = %v, want ErrCustomerNotFound", err)
	}
}

func TestCustomerListScopesNonAdmin(t *testing.T) {
	f := newCustomerFixture(t,
		domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"},
		domain.Customer{ID: "cust-2", Email: "b@example.com", CreatedBy: "mgr-2"},
	)

	page, err := f.svc.List(context.Background(), managerActor("mgr-1"), port.CustomerFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 1 || len(page.Customers) != 1 {
		t.Fatalf("non-admin sees %d customers, want 1", page.Total)
	}

	// A forged filter cannot widen the scope.
	page, err = f.svc.List(context.Background(), managerActor("mgr-1"), port.CustomerFilter{CreatedBy: "mgr-2"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 1 || page.Customers[0].ID != "cust-1" {
		t.Fatal("non-admin escaped creator scoping via filter")
	}

	adminPage, err := f.svc.List(context.Background(), adminActor(), port.CustomerFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if adminPage.Total != 2 {
		t.Fatalf("admin sees %d customers, want 2", adminPage.Total)
	}
}

func TestCustomerListSearch(t *testing.T) {
	f := newCustomerFixture(t,
		domain.Customer{ID: "cust-1", FirstName: "Nimal", LastName: "Perera", Email: "a@example.com", BusinessName: "Perera Traders", CreatedBy: "mgr-1"},
		domain.Customer{ID: "cust-2", FirstName: "Kamala", LastName: "Silva", Email: "b@example.com", BusinessName: "Silva Exports", CreatedBy: "mgr-1"},
	)

	page, err := f.svc.List(context.Background(), adminActor(), port.CustomerFilter{Search: "perera"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 1 || page.Customers[0].ID != "cust-1" {
		t.Fatalf("search returned %d results", page.Total)
	}
}

func TestCustomerUpdateScoped(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"})

	input := validCustomerInput()
	if _, err := f.svc.Update(context.Background(), managerActor("mgr-2"), "cust-1", input); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("Update error = %v, want ErrCustomerNotFound", err)
	}

	updated, err := f.svc.Update(context.Background(), managerActor("mgr-1"), "cust-1", input)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.FirstName != "Nimal" {
		t.Errorf("first name = %q", updated.FirstName)
	}
}

func TestCustomerDeleteRemovesDocuments(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"})

	doc, err := f.svc.AttachDocument(context.Background(), managerActor("mgr-1"), "cust-1", DocumentUpload{
		DocumentType: "registration",
		FileName:     "reg.pdf",
		ContentType:  "application/pdf",
		Contents:     strings.NewReader("pdf bytes"),
	})
	if err != nil {
		t.Fatalf("AttachDocument returned error: %v", err)
	}

	if err := f.svc.Delete(context.Background(), managerActor("mgr-1"), "cust-1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, ok := f.files.files[doc.FilePath]; ok {
		t.Error("document file survived customer delete")
	}
	last := f.events.customerEvents[len(f.events.customerEvents)-1]
	if last.Change != domain.CustomerDeleted {
		t.Errorf("last event change = %q, want deleted", last.Change)
	}
}

func TestCustomerDeleteFailureKeepsFiles(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"})

	doc, err := f.svc.AttachDocument(context.Background(), managerActor("mgr-1"), "cust-1", DocumentUpload{
		DocumentType: "registration",
		FileName:     "reg.pdf",
		ContentType:  "application/pdf",
		Contents:     strings.NewReader("pdf bytes"),
	})
	if err != nil {
		t.Fatalf("AttachDocument returned error: %v", err)
	}

	f.customers.deleteErr = errors.New("connection reset")
	if err := f.svc.Delete(context.Background(), managerActor("mgr-1"), "cust-1"); err == nil {
		t.Fatal("Delete succeeded despite store failure")
	}

	// The row survived the failed delete, so its file must too.
	if _, ok := f.files.files[doc.FilePath]; !ok {
		t.Error("document file removed although the customer row still exists")
	}
}

func TestAttachDocumentRejectsDisallowedType(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"})
	actor := managerActor("mgr-1")

	for _, contentType := range []string{"application/x-msdownload", "text/html", ""} {
		_, err := f.svc.AttachDocument(context.Background(), actor, "cust-1", DocumentUpload{
			DocumentType: "registration",
			FileName:     "payload.exe",
			ContentType:  contentType,
			Contents:     strings.NewReader("MZ"),
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("AttachDocument(%q) error = %v, want ErrValidation", contentType, err)
		}
	}

	// Nothing reached the store or the metadata rows.
	if len(f.files.files) != 0 {
		t.Error("rejected upload was written to the store")
	}
	docs, err := f.svc.ListDocuments(context.Background(), actor, "cust-1")
	if err != nil {
		t.Fatalf("ListDocuments returned error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("documents recorded = %d, want 0", len(docs))
	}
}

func TestAttachDocumentNormalizesContentType(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"})

	doc, err := f.svc.AttachDocument(context.Background(), managerActor("mgr-1"), "cust-1", DocumentUpload{
		DocumentType: "registration",
		FileName:     "scan.pdf",
		ContentType:  "Application/PDF; charset=binary",
		Contents:     strings.NewReader("pdf bytes"),
	})
	if err != nil {
		t.Fatalf("AttachDocument returned error: %v", err)
	}
	if doc.FileType != "application/pdf" {
		t.Errorf("file type = %q, want application/pdf", doc.FileType)
	}
}

func TestAttachAndOpenDocument(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"})
	actor := managerActor("mgr-1")

	doc, err := f.svc.AttachDocument(context.Background(), actor, "cust-1", DocumentUpload{
		DocumentType: "tax",
		FileName:     "tin.pdf",
		ContentType:  "application/pdf",
		Contents:     strings.NewReader("tin document"),
	})
	if err != nil {
		t.Fatalf("AttachDocument returned error: %v", err)
	}
	if doc.FileSize != int64(len("tin document")) {
		t.Errorf("file size = %d", doc.FileSize)
	}

	meta, reader, err := f.svc.OpenDocument(context.Background(), actor, "cust-1", doc.ID)
	if err != nil {
		t.Fatalf("OpenDocument returned error: %v", err)
	}
	defer reader.Close()
	if meta.FileName != "tin.pdf" {
		t.Errorf("file name = %q", meta.FileName)
	}
	contents, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if string(contents) != "tin document" {
		t.Errorf("contents = %q", contents)
	}
}

func TestOpenDocumentForeignCustomerHidden(t *testing.T) {
	f := newCustomerFixture(t,
		domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"},
		domain.Customer{ID: "cust-2", Email: "b@example.com", CreatedBy: "mgr-1"},
	)
	actor := managerActor("mgr-1")

	doc, err := f.svc.AttachDocument(context.Background(), actor, "cust-1", DocumentUpload{
		FileName:    "reg.pdf",
		ContentType: "application/pdf",
		Contents:    strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("AttachDocument returned error: %v", err)
	}

	// A document fetched through the wrong customer is not found.
	if _, _, err := f.svc.OpenDocument(context.Background(), actor, "cust-2", doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("OpenDocument error = %v, want ErrDocumentNotFound", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	f := newCustomerFixture(t, domain.Customer{ID: "cust-1", Email: "a@example.com", CreatedBy: "mgr-1"})
	actor := managerActor("mgr-1")

	doc, err := f.svc.AttachDocument(context.Background(), actor, "cust-1", DocumentUpload{
		FileName:    "reg.pdf",
		ContentType: "application/pdf",
		Contents:    strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("AttachDocument returned error: %v", err)
	}

	if err := f.svc.DeleteDocument(context.Background(), actor, "cust-1", doc.ID); err != nil {
		t.Fatalf("DeleteDocument returned error: %v", err)
	}
	docs, err := f.svc.ListDocuments(context.Background(), actor, "cust-1")
	if err != nil {
		t.Fatalf("ListDocuments returned error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("documents remaining = %d, want 0", len(docs))
	}
}

func TestCustomerInputValidation(t *testing.T) {
	f := newCustomerFixture(t)

	input := validCustomerInput()
	input.Email = "no-at-sign"
	if _, err := f.svc.Create(context.Background(), adminActor(), input); !errors.Is(err, ErrValidation) {
		t.Fatalf("Create error = %v, want ErrValidation", err)
	}

	input = validCustomerInput()
	input.Phone = ""
	if _, err := f.svc.Create(context.Background(), adminActor(), input); !errors.Is(err, ErrValidation) {
		t.Fatalf("Create error = %v, want ErrValidation", err)
	}
}
