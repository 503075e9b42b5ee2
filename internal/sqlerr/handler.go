package sqlerr

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/menu-api/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const tableHint = "table:"

var (
	uniqueConstraintRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)
	fkConstraintRe     = regexp.MustCompile(`^[a-z]+_([a-z_]+_id)_fkey$`)
)

// NotFound returns pgx.ErrNoRows tagged with the table it was looked up in,
// so HandleError can name the missing entity.
func NotFound(table string) error {
	return fmt.Errorf("%s%s: %w", tableHint, table, pgx.ErrNoRows)
}

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// ConvertPgError normalizes a pgconn.PgError.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds codes like SECTION_NOT_FOUND or USER_ALREADY_EXISTS.
func generateErrorCode(entity string, errType Code) string {
	if entity == "" {
		entity = "record"
	}
	domain := strings.ToUpper(strings.ReplaceAll(entity, " ", "_"))

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// entityName picks the entity an error refers to: the target of a *_id
// column first, then the singular table name.
func entityName(tableName, columnName string) string {
	if col := strings.ToLower(columnName); strings.HasSuffix(col, "_id") {
		return strings.TrimSuffix(col, "_id")
	}
	if tableName != "" {
		return strings.TrimSuffix(strings.ToLower(tableName), "s")
	}
	return "record"
}

func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// columnFromConstraint recovers the column from postgres' default
// constraint names (items_section_id_fkey, users_email_key).
func columnFromConstraint(code Code, constraintName string) string {
	switch code {
	case ForeignKeyViolation:
		if m := fkConstraintRe.FindStringSubmatch(constraintName); len(m) > 1 {
			return m[1]
		}
	case UniqueViolation:
		if strings.HasPrefix(constraintName, "unique_") {
			parts := strings.Split(constraintName, "_")
			if len(parts) >= 3 {
				return parts[len(parts)-1]
			}
		}
		if m := uniqueConstraintRe.FindStringSubmatch(constraintName); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// HandleError converts a store error into an *errs.HTTPError.
//
// HTTPErrors pass through untouched. Constraint violations become 400s,
// missing rows become 404s and anything else is a generic 500.
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return fromSQLError(ConvertPgError(pgerr))
	}

	if IsNotFound(err) {
		msg := err.Error()
		if idx := strings.Index(msg, tableHint); idx >= 0 {
			table := strings.SplitN(msg[idx+len(tableHint):], ":", 2)[0]
			entity := entityName(table, "")
			code := strings.ToUpper(entity) + "_NOT_FOUND"
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", humanizeText(entity)), true, &code)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

func fromSQLError(sqlErr *Error) error {
	column := sqlErr.ColumnName
	if column == "" {
		column = columnFromConstraint(sqlErr.Code, sqlErr.ConstraintName)
	}

	entity := entityName(sqlErr.TableName, column)
	errorCode := generateErrorCode(entity, sqlErr.Code)
	fieldName := humanizeText(column)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		var fieldErrors []errs.FieldError
		if column != "" {
			fieldErrors = []errs.FieldError{{Field: column, Error: "object does not exist"}}
		}
		return errs.NewBadRequestError(
			fmt.Sprintf("The referenced %s does not exist", humanizeText(entity)),
			false, &errorCode, fieldErrors, nil,
		)

	case UniqueViolation:
		msg := fmt.Sprintf("A %s with this identifier already exists", humanizeText(entity))
		if fieldName != "" {
			msg = fmt.Sprintf("A %s with this %s already exists", humanizeText(entity), fieldName)
		}
		return errs.NewBadRequestError(msg, true, &errorCode, nil, nil)

	case NotNullViolation:
		if fieldName == "" {
			fieldName = "field"
		}
		fieldErrors := []errs.FieldError{{Field: strings.ToLower(column), Error: "is required"}}
		return errs.NewBadRequestError(fmt.Sprintf("The %s is required", fieldName), true, &errorCode, fieldErrors, nil)

	case CheckViolation:
		msg := "One or more values do not meet required conditions"
		if fieldName != "" {
			msg = fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return errs.NewBadRequestError(msg, true, &errorCode, nil, nil)

	default:
		return errs.NewInternalServerError()
	}
}
