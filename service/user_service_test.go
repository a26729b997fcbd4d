package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
)

func newUserServiceForTest(t *testing.T) (*UserService, sqlmock.Sqlmock, *redis.Client, func()) {
	t.Helper()
	db, mock, sqldb := newMockDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewUserService(&Service{DB: db, RDB: rdb})
	return svc, mock, rdb, func() { _ = sqldb.Close() }
}

func TestUserService_Register_Validation(t *testing.T) {
	svc, _, _, cleanup := newUserServiceForTest(t)
	defer cleanup()
	ctx := context.Background()

	if err := svc.Register(ctx, RegisterReq{Email: "a@b.edu", Password: "secret1", Code: "123456"}); err == nil || err.Error() != "username is required" {
		t.Fatalf("expected username is required, got %v", err)
	}
	if err := svc.Register(ctx, RegisterReq{Username: "anita", Password: "secret1", Code: "123456"}); err == nil || err.Error() != "phone or email is required" {
		t.Fatalf("expected phone or email is required, got %v", err)
	}
	if err := svc.Register(ctx, RegisterReq{Username: "anita", Email: "a@b.edu", Password: "123", Code: "123456"}); err == nil || err.Error() != "password too short, min 6" {
		t.Fatalf("expected password too short, got %v", err)
	}
}

func TestUserService_Register_WithCode(t *testing.T) {
	svc, mock, rdb, cleanup := newUserServiceForTest(t)
	defer cleanup()
	ctx := context.Background()

	// 先走验证码下发（和线上同一条路径）
	ret, err := NewVerifyCodeService(rdb).SendCode(ctx, VerifyCodePurposeRegister, "a@b.edu")
	if err != nil {
		t.Fatalf("SendCode err: %v", err)
	}

	// 错误验证码直接拒绝，不触发任何 DB 查询
	wrong := "000000"
	if wrong == ret.Code {
		wrong = "000001"
	}
	if err := svc.Register(ctx, RegisterReq{Username: "anita", Email: "a@b.edu", Password: "secret1", Code: wrong}); err == nil || err.Error() != "invalid verification code" {
		t.Fatalf("expected invalid verification code, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `nb_user` WHERE username = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `nb_user` WHERE email = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `nb_user`")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := svc.Register(ctx, RegisterReq{Username: "anita", Email: "a@b.edu", Password: "secret1", Code: ret.Code}); err != nil {
		t.Fatalf("Register err: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserService_LoginWithToken(t *testing.T) {
	svc, mock, rdb, cleanup := newUserServiceForTest(t)
	defer cleanup()
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt err: %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user` WHERE username = ?")).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(7, "uid-7", "rrao", string(hashed), "", "rao@campus.edu", nil, fixedNow, fixedNow, nil))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `nb_user` SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	var events []string
	var eventTokens []string
	svc.OnSessionChange(func(event string, userID uint64, token string) {
		if userID == 7 {
			events = append(events, event)
			eventTokens = append(eventTokens, token)
		}
	})

	resp, err := svc.LoginWithToken(ctx, LoginReq{Account: "rrao", Password: "secret1"})
	if err != nil {
		t.Fatalf("LoginWithToken err: %v", err)
	}
	if resp.Token == "" || resp.User.ID != 7 {
		t.Fatalf("unexpected login resp: %#v", resp)
	}
	if len(events) != 1 || events[0] != "session.sign_in" {
		t.Fatalf("expected sign-in event, got %v", events)
	}
	// 事件要带上签发的 token，监听方靠它绑定/注销会话
	if len(eventTokens) != 1 || eventTokens[0] != resp.Token {
		t.Fatalf("expected event to carry issued token, got %v", eventTokens)
	}

	// 签发出去的 token 立刻可鉴权
	uid, err := NewTokenService(rdb).GetUserIDByToken(ctx, resp.Token)
	if err != nil || uid != 7 {
		t.Fatalf("expected token -> 7, got %d err %v", uid, err)
	}
}

func TestUserService_LoginWithToken_WrongPassword(t *testing.T) {
	svc, mock, _, cleanup := newUserServiceForTest(t)
	defer cleanup()
	ctx := context.Background()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `nb_user` WHERE username = ?")).
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(7, "uid-7", "rrao", string(hashed), "", "rao@campus.edu", nil, fixedNow, fixedNow, nil))

	_, err := svc.LoginWithToken(ctx, LoginReq{Account: "rrao", Password: "wrong"})
	if err == nil || err.Error() != "invalid account or password" {
		t.Fatalf("expected invalid account or password, got %v", err)
	}
}
