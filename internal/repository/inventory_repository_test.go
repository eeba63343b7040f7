package repository

import (
    "context"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func mockInventory(t *testing.T) (*InventoryRepo, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    return NewInventoryRepo(db), mock
}

func TestReserveTakesOneUnit(t *testing.T) {
    repo, mock := mockInventory(t)
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE car_inventory SET quantity = quantity - 1 WHERE car_id = \\? AND quantity > 0").
        WithArgs(uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    tx, err := repo.db.Begin()
    require.NoError(t, err)
    defer func() { _ = tx.Rollback() }()

    assert.NoError(t, repo.ReserveTx(context.Background(), tx, 5))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveOnEmptyInventory(t *testing.T) {
    repo, mock := mockInventory(t)
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE car_inventory SET quantity = quantity - 1").
        WithArgs(uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT quantity FROM car_inventory WHERE car_id = ?").
        WithArgs(uint64(5)).
        WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(0))

    tx, err := repo.db.Begin()
    require.NoError(t, err)
    defer func() { _ = tx.Rollback() }()

    assert.ErrorIs(t, repo.ReserveTx(context.Background(), tx, 5), ErrOutOfStock)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveUnknownCar(t *testing.T) {
    repo, mock := mockInventory(t)
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE car_inventory SET quantity = quantity - 1").
        WithArgs(uint64(99)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT quantity FROM car_inventory WHERE car_id = ?").
        WithArgs(uint64(99)).
        WillReturnRows(sqlmock.NewRows([]string{"quantity"}))

    tx, err := repo.db.Begin()
    require.NoError(t, err)
    defer func() { _ = tx.Rollback() }()

    assert.ErrorIs(t, repo.ReserveTx(context.Background(), tx, 99), ErrInventoryNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleasePutsOneUnitBack(t *testing.T) {
    repo, mock := mockInventory(t)
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE car_inventory SET quantity = quantity \\+ 1 WHERE car_id = ?").
        WithArgs(uint64(5)).
        WillReturnResult(sqlmock.NewResult(0, 1))

    tx, err := repo.db.Begin()
    require.NoError(t, err)
    defer func() { _ = tx.Rollback() }()

    assert.NoError(t, repo.ReleaseTx(context.Background(), tx, 5))
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReleaseUnknownCar(t *testing.T) {
    repo, mock := mockInventory(t)
    mock.ExpectBegin()
    mock.ExpectExec("UPDATE car_inventory SET quantity = quantity \\+ 1").
        WithArgs(uint64(99)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    tx, err := repo.db.Begin()
    require.NoError(t, err)
    defer func() { _ = tx.Rollback() }()

    assert.ErrorIs(t, repo.ReleaseTx(context.Background(), tx, 99), ErrInventoryNotFound)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckAvailability(t *testing.T) {
    repo, mock := mockInventory(t)

    mock.ExpectQuery("SELECT quantity FROM car_inventory WHERE car_id = ?").
        WithArgs(uint64(5)).
        WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(2))
    assert.NoError(t, repo.CheckAvailability(context.Background(), 5))

    mock.ExpectQuery("SELECT quantity FROM car_inventory WHERE car_id = ?").
        WithArgs(uint64(6)).
        WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(0))
    assert.ErrorIs(t, repo.CheckAvailability(context.Background(), 6), ErrOutOfStock)

    mock.ExpectQuery("SELECT quantity FROM car_inventory WHERE car_id = ?").
        WithArgs(uint64(7)).
        WillReturnRows(sqlmock.NewRows([]string{"quantity"}))
    assert.ErrorIs(t, repo.CheckAvailability(context.Background(), 7), ErrInventoryNotFound)

    assert.NoError(t, mock.ExpectationsWereMet())
}
