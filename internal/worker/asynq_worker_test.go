package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hevea-next/internal/constants"
	"github.com/hevea-next/internal/models"
	"github.com/hevea-next/internal/provider"
	"github.com/hevea-next/internal/queue"
	"github.com/hevea-next/internal/repository"
	"github.com/hevea-next/internal/service"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Notification{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	container := &provider.Container{
		NotificationService: service.NewNotificationService(repository.NewNotificationRepository(db), nil),
	}
	return NewConsumer(container), db
}

func TestHandleNotificationDispatchPersists(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	task, err := queue.NewNotificationDispatchTask(queue.NotificationDispatchPayload{
		Event:    constants.NotificationEventTaskDelivered,
		BizType:  constants.NotificationBizTypeTask,
		EntityID: 7,
		Payload:  models.JSON{"task_no": "DT-ABCD1234"},
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("handle dispatch failed: %v", err)
	}

	var notifications []models.Notification
	if err := db.Find(&notifications).Error; err != nil {
		t.Fatalf("load notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("expected 1 notification, got: %d", len(notifications))
	}
	if notifications[0].Event != constants.NotificationEventTaskDelivered || notifications[0].EntityID != 7 {
		t.Fatalf("unexpected notification: %+v", notifications[0])
	}
}

func TestHandleNotificationDispatchSkipsInvalidPayload(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	task, err := queue.NewNotificationDispatchTask(queue.NotificationDispatchPayload{
		BizType: constants.NotificationBizTypeTask,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleNotificationDispatch(context.Background(), task); err != nil {
		t.Fatalf("expected invalid payload to be dropped, got: %v", err)
	}

	var count int64
	db.Model(&models.Notification{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no notifications, got: %d", count)
	}
}

func TestHandleCustodyOverdueSweepWithoutService(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})

	task, err := queue.NewCustodyOverdueSweepTask(queue.CustodyOverdueSweepPayload{RequestedBy: 1})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	// 服务缺位时直接吞掉，避免队列无限重试
	if err := consumer.handleCustodyOverdueSweep(context.Background(), task); err != nil {
		t.Fatalf("expected nil error, got: %v", err)
	}
}
