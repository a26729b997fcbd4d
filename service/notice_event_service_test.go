package service

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cydxin/board-sdk/cons"
)

func TestNoticeEventService_Publish(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()

	var notified []uint64
	base := &Service{DB: db, WsNotifier: func(uid uint64, msg []byte) {
		notified = append(notified, uid)
		var m map[string]any
		if err := json.Unmarshal(msg, &m); err != nil {
			t.Fatalf("bad ws payload: %v", err)
		}
		if m["type"] != cons.EventNotification {
			t.Fatalf("unexpected ws type: %v", m["type"])
		}
	}}
	svc := NewNoticeEventService(base)

	// 受众 = 全部角色档案持有者；操作者 7 自己也要收一条
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `user_id` FROM `nb_user_role`")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5).AddRow(6))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `nb_notice_event`")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `nb_notice_event_delivery`")).
		WillReturnResult(sqlmock.NewResult(1, 3))
	mock.ExpectCommit()

	evt, err := svc.PublishNoticeEvent(1, 7, cons.EventNoticeCreated, map[string]any{"title": "t"})
	if err != nil {
		t.Fatalf("PublishNoticeEvent err: %v", err)
	}
	if evt.ID != 1 || evt.EventType != cons.EventNoticeCreated {
		t.Fatalf("unexpected event: %#v", evt)
	}
	if len(notified) != 3 {
		t.Fatalf("expected 3 ws pushes, got %d (%v)", len(notified), notified)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNoticeEventService_Publish_Validation(t *testing.T) {
	db, _, sqldb := newMockDB(t)
	defer sqldb.Close()
	svc := NewNoticeEventService(&Service{DB: db})

	if _, err := svc.PublishNoticeEvent(0, 7, cons.EventNoticeCreated, nil); err == nil {
		t.Fatalf("expected error for missing notice_id")
	}
	if _, err := svc.PublishNoticeEvent(1, 0, cons.EventNoticeCreated, nil); err == nil {
		t.Fatalf("expected error for missing actor_id")
	}
	if _, err := svc.PublishNoticeEvent(1, 7, "", nil); err == nil {
		t.Fatalf("expected error for missing event_type")
	}
}

func TestNoticeEventService_ListUserEvents(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()
	svc := NewNoticeEventService(&Service{DB: db})

	deliveryCols := []string{"id", "user_id", "event_id", "is_read", "read_at", "created_at", "deleted_at"}
	eventCols := []string{"id", "notice_id", "actor_id", "event_type", "payload", "created_at", "deleted_at"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice_event_delivery` WHERE user_id = ? AND created_at >= ?")).
		WillReturnRows(sqlmock.NewRows(deliveryCols).
			AddRow(12, 5, 2, false, nil, fixedNow, nil).
			AddRow(11, 5, 1, true, &fixedNow, fixedNow, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_notice_event` WHERE `nb_notice_event`.`id` IN (?,?)")).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(1, 100, 7, "notice.created", []byte(`{"title":"a"}`), fixedNow, nil).
			AddRow(2, 101, 7, "notice.deleted", []byte(`{"title":"b"}`), fixedNow, nil))

	items, next, err := svc.ListUserEvents(5, 2, 0, 50, false)
	if err != nil {
		t.Fatalf("ListUserEvents err: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != 12 || items[0].NoticeID != 101 || items[0].EventType != "notice.deleted" {
		t.Fatalf("unexpected first item: %#v", items[0])
	}
	// 游标是本页最小的 delivery id
	if next != 11 {
		t.Fatalf("expected next cursor 11, got %d", next)
	}
}

func TestNoticeEventService_MarkReadByIDs(t *testing.T) {
	db, mock, sqldb := newMockDB(t)
	defer sqldb.Close()
	svc := NewNoticeEventService(&Service{DB: db})

	// 空集合是 no-op
	if err := svc.MarkReadByIDs(5, nil); err != nil {
		t.Fatalf("MarkReadByIDs empty err: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE `nb_notice_event_delivery` SET")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	if err := svc.MarkReadByIDs(5, []uint64{11, 12}); err != nil {
		t.Fatalf("MarkReadByIDs err: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
