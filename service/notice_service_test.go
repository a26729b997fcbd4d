package service

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/board-sdk/models"
)

// 固定“今天”，避免用例跨日失败
var fixedNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func newNoticeServiceForTest(t *testing.T) (*NoticeService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, sqldb := newMockDB(t)
	svc := NewNoticeService(&Service{DB: db})
	svc.now = func() time.Time { return fixedNow }
	return svc, mock, func() { _ = sqldb.Close() }
}

func noticeColumns() []string {
	return []string{"id", "title", "description", "department", "year", "expiry_date", "created_by", "created_at", "updated_at"}
}

func TestNoticeService_FetchNotices_EmptyShortCircuit(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice`")).
		WillReturnRows(sqlmock.NewRows(noticeColumns()))

	out, err := svc.FetchNotices(models.NoticeFilter{})
	if err != nil {
		t.Fatalf("FetchNotices err: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}

	// 空结果不应触发名字查询
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNoticeService_FetchNotices_FilterArgsAndOrder(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	rows := sqlmock.NewRows(noticeColumns()).
		AddRow(2, "Exam schedule", "CS exam on friday", "CSE", "3rd", "2026-09-30", 7, fixedNow, fixedNow).
		AddRow(1, "Holiday", "campus closed", "CSE", "3rd", "2026-09-10", 7, fixedNow.Add(-time.Hour), fixedNow.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice` WHERE expiry_date >= ? AND created_by = ? ORDER BY created_at desc")).
		WithArgs("2026-09-01", uint64(7)).
		WillReturnRows(rows)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id IN (?)")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role", "full_name"}).AddRow(7, "faculty", "Dr. Rao"))

	out, err := svc.FetchNotices(models.NoticeFilter{CreatedBy: 7, OnlyActive: true})
	if err != nil {
		t.Fatalf("FetchNotices err: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 notices, got %d", len(out))
	}
	// 返回顺序保持查询层的 created_at 倒序
	if out[0].ID != 2 || out[1].ID != 1 {
		t.Fatalf("expected order [2,1], got [%d,%d]", out[0].ID, out[1].ID)
	}
	if out[0].Profiles.FullName != "Dr. Rao" {
		t.Fatalf("expected full name merged, got %q", out[0].Profiles.FullName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNoticeService_FetchNotices_UnknownForMissingProfile(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	rows := sqlmock.NewRows(noticeColumns()).
		AddRow(1, "a", "b", "IT", "1st", "2026-09-30", 5, fixedNow, fixedNow).
		AddRow(2, "c", "d", "IT", "1st", "2026-09-30", 6, fixedNow, fixedNow)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice`")).WillReturnRows(rows)

	// 只有 5 有档案；6 缺档 -> "Unknown"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id IN (?,?)")).
		WithArgs(uint64(5), uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role", "full_name"}).AddRow(5, "faculty", "Prof. Iyer"))

	out, err := svc.FetchNotices(models.NoticeFilter{})
	if err != nil {
		t.Fatalf("FetchNotices err: %v", err)
	}
	if out[0].Profiles.FullName != "Prof. Iyer" {
		t.Fatalf("expected Prof. Iyer, got %q", out[0].Profiles.FullName)
	}
	if out[1].Profiles.FullName != UnknownFullName {
		t.Fatalf("expected %q, got %q", UnknownFullName, out[1].Profiles.FullName)
	}
}

func TestNoticeService_FetchNotices_ChunksLookups(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	// 25 个不同创建者 -> 10/10/5 三片
	rows := sqlmock.NewRows(noticeColumns())
	for i := 1; i <= 25; i++ {
		rows.AddRow(i, fmt.Sprintf("t%d", i), "d", "ECE", "2nd", "2026-09-30", i, fixedNow, fixedNow)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice`")).WillReturnRows(rows)

	chunkRows := func(from, to int) *sqlmock.Rows {
		r := sqlmock.NewRows([]string{"user_id", "role", "full_name"})
		for i := from; i <= to; i++ {
			r.AddRow(i, "faculty", fmt.Sprintf("F%d", i))
		}
		return r
	}
	mock.ExpectQuery(regexp.QuoteMeta("IN (?,?,?,?,?,?,?,?,?,?)")).WillReturnRows(chunkRows(1, 10))
	mock.ExpectQuery(regexp.QuoteMeta("IN (?,?,?,?,?,?,?,?,?,?)")).WillReturnRows(chunkRows(11, 20))
	mock.ExpectQuery(regexp.QuoteMeta("IN (?,?,?,?,?)")).WillReturnRows(chunkRows(21, 25))

	out, err := svc.FetchNotices(models.NoticeFilter{})
	if err != nil {
		t.Fatalf("FetchNotices err: %v", err)
	}
	if len(out) != 25 {
		t.Fatalf("expected 25, got %d", len(out))
	}
	for i, n := range out {
		want := fmt.Sprintf("F%d", i+1)
		if n.Profiles.FullName != want {
			t.Fatalf("notice %d: expected %q, got %q", i, want, n.Profiles.FullName)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNoticeService_FetchNotices_DedupesCreators(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	// 同一创建者多条公告只查一次
	rows := sqlmock.NewRows(noticeColumns()).
		AddRow(1, "a", "d", "CSE", "1st", "2026-09-30", 9, fixedNow, fixedNow).
		AddRow(2, "b", "d", "CSE", "1st", "2026-09-30", 9, fixedNow, fixedNow).
		AddRow(3, "c", "d", "CSE", "1st", "2026-09-30", 9, fixedNow, fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice`")).WillReturnRows(rows)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id IN (?)")).
		WithArgs(uint64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role", "full_name"}).AddRow(9, "faculty", "Dr. Singh"))

	out, err := svc.FetchNotices(models.NoticeFilter{})
	if err != nil {
		t.Fatalf("FetchNotices err: %v", err)
	}
	for _, n := range out {
		if n.Profiles.FullName != "Dr. Singh" {
			t.Fatalf("expected Dr. Singh, got %q", n.Profiles.FullName)
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNoticeService_FetchNotices_Idempotent(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	// 后端没有变化时，连续两次查询返回完全一致（id 集合/顺序/冗余名字）
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice`")).
			WillReturnRows(sqlmock.NewRows(noticeColumns()).
				AddRow(2, "b", "d", "IT", "2nd", "2026-09-30", 4, fixedNow, fixedNow).
				AddRow(1, "a", "d", "IT", "2nd", "2026-09-30", 4, fixedNow.Add(-time.Hour), fixedNow.Add(-time.Hour)))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id IN (?)")).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "role", "full_name"}).AddRow(4, "faculty", "Dr. Nair"))
	}

	first, err := svc.FetchNotices(models.NoticeFilter{})
	if err != nil {
		t.Fatalf("first FetchNotices err: %v", err)
	}
	second, err := svc.FetchNotices(models.NoticeFilter{})
	if err != nil {
		t.Fatalf("second FetchNotices err: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Profiles != second[i].Profiles {
			t.Fatalf("result %d differs: %#v vs %#v", i, first[i], second[i])
		}
	}
}

func TestNoticeService_FetchNotices_LookupFailureIsStrict(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	rows := sqlmock.NewRows(noticeColumns()).
		AddRow(1, "a", "d", "CSE", "1st", "2026-09-30", 3, fixedNow, fixedNow)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice`")).WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role`")).
		WillReturnError(fmt.Errorf("connection reset"))

	// 名字查询失败 -> 整次调用失败，不降级为 Unknown
	if _, err := svc.FetchNotices(models.NoticeFilter{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNoticeService_CreateNotice_Validation(t *testing.T) {
	svc, _, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	cases := []struct {
		name string
		req  CreateNoticeReq
		want string
	}{
		{"missing title", CreateNoticeReq{Description: "d", Department: "CSE", Year: "1st", ExpiryDate: "2026-09-30"}, "title is required"},
		{"missing description", CreateNoticeReq{Title: "t", Department: "CSE", Year: "1st", ExpiryDate: "2026-09-30"}, "description is required"},
		{"bad department", CreateNoticeReq{Title: "t", Description: "d", Department: "EEE", Year: "1st", ExpiryDate: "2026-09-30"}, "invalid department"},
		{"bad year", CreateNoticeReq{Title: "t", Description: "d", Department: "CSE", Year: "5th", ExpiryDate: "2026-09-30"}, "invalid year"},
		{"bad date", CreateNoticeReq{Title: "t", Description: "d", Department: "CSE", Year: "1st", ExpiryDate: "30-09-2026"}, "invalid expiry_date, want YYYY-MM-DD"},
	}
	for _, c := range cases {
		if _, err := svc.CreateNotice(1, c.req); err == nil || err.Error() != c.want {
			t.Fatalf("%s: expected %q, got %v", c.name, c.want, err)
		}
	}
}

func TestNoticeService_CreateNotice_EnrichesCreatorName(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `nb_notice`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// 创建成功后冗余创建者自己的名字
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user_role` WHERE user_id IN (?)")).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "role", "full_name"}).AddRow(7, "faculty", "Dr. Rao"))

	dto, err := svc.CreateNotice(7, CreateNoticeReq{
		Title:       "Exam schedule",
		Description: "CS exam on friday",
		Department:  "CSE",
		Year:        "3rd",
		ExpiryDate:  "2026-09-30",
	})
	if err != nil {
		t.Fatalf("CreateNotice err: %v", err)
	}
	if dto.Profiles.FullName != "Dr. Rao" {
		t.Fatalf("expected creator name resolved, got %q", dto.Profiles.FullName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNoticeService_UpdateNotice_OnlyCreator(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice` WHERE id = ?")).
		WithArgs(uint64(1), 1).
		WillReturnRows(sqlmock.NewRows(noticeColumns()).
			AddRow(1, "t", "d", "CSE", "1st", "2026-09-30", 7, fixedNow, fixedNow))

	title := "new title"
	err := svc.UpdateNotice(8, 1, UpdateNoticeReq{Title: &title})
	if err == nil || err.Error() != "permission denied" {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestNoticeService_DeleteNotice_NotifiesChange(t *testing.T) {
	svc, mock, cleanup := newNoticeServiceForTest(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice` WHERE id = ?")).
		WithArgs(uint64(1), 1).
		WillReturnRows(sqlmock.NewRows(noticeColumns()).
			AddRow(1, "t", "d", "CSE", "1st", "2026-09-30", 7, fixedNow, fixedNow))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `nb_notice` WHERE id = ?")).
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	changed := 0
	svc.SetChangeListener(func() { changed++ })

	if err := svc.DeleteNotice(7, 1); err != nil {
		t.Fatalf("DeleteNotice err: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 change notification, got %d", changed)
	}
}
