package postgres

import (
	"context"
	"database/sql"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/domain"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/core/port"
	"github.com/HasaraLiyanagamage/Customer-Managment/internal/repository"
)

var customerColumns = []string{
	"c.id",
	"c.first_name",
	"c.last_name",
	"c.email",
	"c.phone",
	"c.address",
	"c.city",
	"c.state",
	"c.postal_code",
	"c.country",
	"c.business_name",
	"c.business_type",
	"c.business_reg_number",
	"c.tin_number",
	"c.vat_number",
	"c.activities",
	"c.created_by",
	"c.created_at",
	"c.updated_at",
	"u.first_name",
	"u.last_name",
	"u.email",
}

// CustomerRepository implements port.CustomerRepository using PostgreSQL.
// Reads join the creating user so listings can show the creator without a
// second round trip.
type CustomerRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewCustomerRepository wires a PostgreSQL-backed customer repository.
func NewCustomerRepository(exec pgExecutor) *CustomerRepository {
	repo := &CustomerRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance operating within the supplied transaction.
func (r *CustomerRepository) WithTx(tx pgx.Tx) *CustomerRepository {
	if tx == nil {
		return r
	}
	return &CustomerRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// Create inserts a new customer row. A unique violation on the email index
// surfaces as repository.ErrDuplicate.
func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) error {
	stmt, args, err := r.builder.Insert("crm.customers").
		Columns(
			"id",
			"first_name",
			"last_name",
			"email",
			"phone",
			"address",
			"city",
			"state",
			"postal_code",
			"country",
			"business_name",
			"business_type",
			"business_reg_number",
			"tin_number",
			"vat_number",
			"activities",
			"created_by",
			"created_at",
			"updated_at",
		).
		Values(
			customer.ID,
			customer.FirstName,
			customer.LastName,
			customer.Email,
			customer.Phone,
			customer.Address,
			customer.City,
			customer.State,
			customer.PostalCode,
			customer.Country,
			customer.BusinessName,
			customer.BusinessType,
			customer.BusinessRegNumber,
			customer.TINNumber,
			customer.VATNumber,
			customer.Activities,
			customer.CreatedBy,
			customer.CreatedAt,
			customer.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert customer sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

func (r *CustomerRepository) customerQuery() squirrel.SelectBuilder {
	return r.builder.
		Select(customerColumns...).
		From("crm.customers c").
		Join("crm.users u ON u.id = c.created_by")
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		customer domain.Customer
		creator  domain.User

		address, city, state, postalCode sql.NullString
		businessType, businessRegNumber  sql.NullString
		tinNumber, vatNumber, activities sql.NullString
	)

	if err := row.Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.Phone,
		&address,
		&city,
		&state,
		&postalCode,
		&customer.Country,
		&customer.BusinessName,
		&businessType,
		&businessRegNumber,
		&tinNumber,
		&vatNumber,
		&activities,
		&customer.CreatedBy,
		&customer.CreatedAt,
		&customer.UpdatedAt,
		&creator.FirstName,
		&creator.LastName,
		&creator.Email,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}

	assign := func(dst **string, src sql.NullString) {
		if src.Valid {
			val := src.String
			*dst = &val
		}
	}
	assign(&customer.Address, address)
	assign(&customer.City, city)
	assign(&customer.State, state)
	assign(&customer.PostalCode, postalCode)
	assign(&customer.BusinessType, businessType)
	assign(&customer.BusinessRegNumber, businessRegNumber)
	assign(&customer.TINNumber, tinNumber)
	assign(&customer.VATNumber, vatNumber)
	assign(&customer.Activities, activities)

	creator.ID = customer.CreatedBy
	customer.Creator = &creator

	return &customer, nil
}

// GetByID retrieves a customer including its creator summary.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	stmt, args, err := r.customerQuery().
		Where(squirrel.Eq{"c.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select customer sql: %w", err)
	}

	return scanCustomer(r.exec.QueryRow(ctx, stmt, args...))
}

func applyCustomerFilter(query squirrel.SelectBuilder, filter port.CustomerFilter) squirrel.SelectBuilder {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"c.first_name": pattern},
			squirrel.ILike{"c.last_name": pattern},
			squirrel.ILike{"c.email": pattern},
			squirrel.ILike{"c.business_name": pattern},
			squirrel.ILike{"c.phone": pattern},
		})
	}
	if filter.CreatedBy != "" {
		query = query.Where(squirrel.Eq{"c.created_by": filter.CreatedBy})
	}
	return query
}

// List returns customers matching the filter, newest first.
func (r *CustomerRepository) List(ctx context.Context, filter port.CustomerFilter) ([]domain.Customer, error) {
	query := applyCustomerFilter(r.customerQuery(), filter).
		OrderBy("c.created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list customers sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}

	return customers, nil
}

// Count returns the total number of customers matching the filter.
func (r *CustomerRepository) Count(ctx context.Context, filter port.CustomerFilter) (int, error) {
	query := applyCustomerFilter(
		r.builder.Select("COUNT(*)").From("crm.customers c"),
		filter,
	)

	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count customers sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan customers count: %w", err)
	}

	return int(count), nil
}

// Update modifies an existing customer's fields.
func (r *CustomerRepository) Update(ctx context.Context, customer domain.Customer) error {
	stmt, args, err := r.builder.Update("crm.customers").
		Set("first_name", customer.FirstName).
		Set("last_name", customer.LastName).
		Set("email", customer.Email).
		Set("phone", customer.Phone).
		Set("address", customer.Address).
		Set("city", customer.City).
		Set("state", customer.State).
		Set("postal_code", customer.PostalCode).
		Set("country", customer.Country).
		Set("business_name", customer.BusinessName).
		Set("business_type", customer.BusinessType).
		Set("business_reg_number", customer.BusinessRegNumber).
		Set("tin_number", customer.TINNumber).
		Set("vat_number", customer.VATNumber).
		Set("activities", customer.Activities).
		Set("updated_at", customer.UpdatedAt).
		Where(squirrel.Eq{"id": customer.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update customer sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a customer row; document rows cascade via FK.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.Delete("crm.customers").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete customer sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// CountByCreator reports how many customers the given user created.
func (r *CustomerRepository) CountByCreator(ctx context.Context, userID string) (int, error) {
	stmt, args, err := r.builder.Select("COUNT(*)").
		From("crm.customers c").
		Where(squirrel.Eq{"c.created_by": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count customers by creator sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("scan customers by creator count: %w", err)
	}

	return int(count), nil
}

var _ port.CustomerRepository = (*CustomerRepository)(nil)
