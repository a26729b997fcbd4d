package service

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func roleColumns() []string {
	return []string{"user_id", "role", "full_name", "created_at", "updated_at"}
}

func TestRoleService_SetupRole_Validation(t *testing.T) {
	db, _, sqldb := newMockDB(t)
	defer sqldb.Close()
	svc := NewRoleService(&Service{DB: db})

	if _, err := svc.SetupRole(7, SetupRoleReq{Role: "faculty", FullName: "  "}); err == nil || err.Error() != "full_name is required" {
		t.Fatalf("expected full_name is required, got %v", err)
	}
	if _, err := svc.SetupRole(7, SetupRoleReq{Role: "admin", FullName: "Dr. Rao"}); err == nil || err.Error() != "invalid role" {
		t.Fatalf("expected invalid role, got %v", err)
	}
}

func TestRoleService_SetupRole_OnceOnly(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()

	var pushed [][]byte
	base := &Service{DB: db, WsNotifier: func(_ uint64, msg []byte) {
		pushed = append(pushed, msg)
	}}
	svc := NewRoleService(base)

	// 首次写入：先查（不存在），再插入
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id = ?")).
		WillReturnRows(sqlmock.NewRows(roleColumns()))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `nb_user_role`")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	dto, err := svc.SetupRole(7, SetupRoleReq{Role: "student", FullName: "Anita"})
	if err != nil {
		t.Fatalf("SetupRole err: %v", err)
	}
	if dto.Role != "student" || dto.FullName != "Anita" {
		t.Fatalf("unexpected dto: %#v", dto)
	}
	if len(pushed) != 1 {
		t.Fatalf("expected 1 ws push, got %d", len(pushed))
	}

	// 重复写入：查到已有档案 -> 报错，角色不可变
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id = ?")).
		WillReturnRows(sqlmock.NewRows(roleColumns()).AddRow(7, "student", "Anita", fixedNow, fixedNow))

	if _, err := svc.SetupRole(7, SetupRoleReq{Role: "faculty", FullName: "Anita"}); err == nil || err.Error() != "role already set" {
		t.Fatalf("expected role already set, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRoleService_GetRole_MissingIsNotError(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()
	svc := NewRoleService(&Service{DB: db})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id = ?")).
		WillReturnRows(sqlmock.NewRows(roleColumns()))

	dto, err := svc.GetRole(7)
	if err != nil {
		t.Fatalf("GetRole err: %v", err)
	}
	if dto != nil {
		t.Fatalf("expected nil dto for missing profile, got %#v", dto)
	}
}

func TestRoleService_ResolveRole(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()
	svc := NewRoleService(&Service{DB: db})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id = ?")).
		WillReturnRows(sqlmock.NewRows(roleColumns()).AddRow(7, "faculty", "Dr. Rao", fixedNow, fixedNow))
	role, err := svc.ResolveRole(7)
	if err != nil || role != "faculty" {
		t.Fatalf("expected faculty, got %q err %v", role, err)
	}

	// 未设置 -> 空串 + nil，门卫据此给 403 而不是 500
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id = ?")).
		WillReturnRows(sqlmock.NewRows(roleColumns()))
	role, err = svc.ResolveRole(7)
	if err != nil || role != "" {
		t.Fatalf("expected empty role, got %q err %v", role, err)
	}
}
