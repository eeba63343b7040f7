package handler

import (
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/rentaly/car-rental/internal/repository"
    "github.com/rentaly/car-rental/internal/service"
)

func newBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    cars := repository.NewCarRepo(db)
    invoices := repository.NewInvoiceRepo(db)
    inventory := repository.NewInventoryRepo(db)
    booking := service.NewBookingService(db, cars, invoices, inventory)
    return NewBookingHandler(booking, invoices, cars, inventory), mock
}

func bookContext(t *testing.T, carID, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/bookings/book/"+carID, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("carId")
    c.SetParamValues(carID)
    c.Set("user_id", userID)
    c.Set("role", role)
    return c, rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) BaseResponse {
    t.Helper()
    var out BaseResponse
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
    return out
}

func TestBookRejectsBadDates(t *testing.T) {
    h, mock := newBookingHandler(t)

    c, rec := bookContext(t, "3", `{"start_date":"not-a-date","end_date":"2026-08-12"}`, 42, "user")
    require.NoError(t, h.Book(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    env := decodeEnvelope(t, rec)
    assert.Equal(t, http.StatusBadRequest, env.StatusCode)
    assert.NotEmpty(t, env.Timestamp)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRejectsReversedRange(t *testing.T) {
    h, mock := newBookingHandler(t)
    now := time.Now().UTC()
    mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = ?").
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "car_type",
            "stock", "image_url", "created_at", "updated_at"}).
            AddRow(3, "Corolla", "", 4500, "sedan", 5, nil, now, now))

    c, rec := bookContext(t, "3", `{"start_date":"2026-08-12","end_date":"2026-08-10"}`, 42, "user")
    require.NoError(t, h.Book(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookInvalidCarID(t *testing.T) {
    h, _ := newBookingHandler(t)

    c, rec := bookContext(t, "abc", `{"start_date":"2026-08-10","end_date":"2026-08-12"}`, 42, "user")
    require.NoError(t, h.Book(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookOutOfStock(t *testing.T) {
    h, mock := newBookingHandler(t)
    now := time.Now().UTC()

    mock.ExpectQuery("SELECT (.+) FROM cars WHERE id = ?").
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "car_type",
            "stock", "image_url", "created_at", "updated_at"}).
            AddRow(3, "Corolla", "", 4500, "sedan", 5, nil, now, now))
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE car_inventory SET quantity = quantity - 1").
        WithArgs(uint64(3)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT quantity FROM car_inventory WHERE car_id = ?").
        WithArgs(uint64(3)).
        WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(0))
    mock.ExpectRollback()

    c, rec := bookContext(t, "3", `{"start_date":"2026-08-10","end_date":"2026-08-12"}`, 42, "user")
    require.NoError(t, h.Book(c))
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInvoiceOwnership(t *testing.T) {
    h, mock := newBookingHandler(t)
    now := time.Now().UTC()
    rows := func() *sqlmock.Rows {
        return sqlmock.NewRows([]string{"id", "user_id", "car_id", "payment_status", "rent_status",
            "start_date", "end_date", "total_price", "returned_at", "created_at", "updated_at"}).
            AddRow(7, 42, 3, "pending", "rented", now, now, 4500, nil, now, now)
    }

    // A stranger gets 403.
    mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id = ?").
        WithArgs(uint64(7)).WillReturnRows(rows())
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/bookings/7", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    c.SetParamNames("id")
    c.SetParamValues("7")
    c.Set("user_id", uint64(99))
    c.Set("role", "user")
    require.NoError(t, h.GetByID(c))
    assert.Equal(t, http.StatusForbidden, rec.Code)

    // An admin sees any invoice.
    mock.ExpectQuery("SELECT (.+) FROM invoices WHERE id = ?").
        WithArgs(uint64(7)).WillReturnRows(rows())
    req = httptest.NewRequest(http.MethodGet, "/v1/bookings/7", nil)
    rec = httptest.NewRecorder()
    c = e.NewContext(req, rec)
    c.SetParamNames("id")
    c.SetParamValues("7")
    c.Set("user_id", uint64(99))
    c.Set("role", "admin")
    require.NoError(t, h.GetByID(c))
    assert.Equal(t, http.StatusOK, rec.Code)

    assert.NoError(t, mock.ExpectationsWereMet())
}
