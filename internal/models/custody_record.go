package models

import (
	"time"
)

// CustodyRecord 保管台账记录：一只料桶一次借出到归还的完整周期
type CustodyRecord struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                      // 主键
	BarrelID         uint       `gorm:"index;not null" json:"barrel_id"`                           // 料桶ID
	HolderName       string     `gorm:"type:varchar(200);not null" json:"holder_name"`             // 持有人姓名（借出时快照，之后不可变）
	HolderContact    string     `gorm:"type:varchar(200)" json:"holder_contact,omitempty"`         // 持有人联系方式快照
	IssuedAt         time.Time  `gorm:"index;not null" json:"issued_at"`                           // 借出时间
	ExpectedReturnAt time.Time  `gorm:"index;not null" json:"expected_return_at"`                  // 约定归还时间
	ReturnedAt       *time.Time `gorm:"index" json:"returned_at,omitempty"`                        // 实际归还时间
	Status           string     `gorm:"index;not null" json:"status"`                              // 记录状态
	DaysOverdue      int        `gorm:"not null;default:0" json:"days_overdue"`                    // 逾期天数（派生）
	PenaltyAmount    Money      `gorm:"type:decimal(20,2);not null;default:0" json:"penalty_amount"` // 罚金（派生）
	Currency         string     `gorm:"type:varchar(10);not null;default:''" json:"currency"`      // 罚金币种
	ReturnCondition  string     `gorm:"type:varchar(20)" json:"return_condition,omitempty"`        // 归还桶况
	ReturnNotes      string     `gorm:"type:varchar(500)" json:"return_notes,omitempty"`           // 归还备注
	OverdueAtReturn  bool       `gorm:"not null;default:false" json:"overdue_at_return"`           // 归还时已逾期
	NeedsReview      bool       `gorm:"index;not null;default:false" json:"needs_review"`          // 时钟偏移等异常，需人工复核
	IssuedByID       uint       `gorm:"index;not null" json:"issued_by_id"`                        // 借出经办人
	ReturnedByID     *uint      `gorm:"index" json:"returned_by_id,omitempty"`                     // 归还经办人
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt        time.Time  `gorm:"index" json:"updated_at"`                                   // 更新时间

	Barrel *Barrel `gorm:"foreignKey:BarrelID" json:"barrel,omitempty"` // 关联料桶
}

// TableName 指定表名
func (CustodyRecord) TableName() string {
	return "custody_records"
}

// Open 判断记录是否仍在借出中（未归还、未判丢）
func (r CustodyRecord) Open() bool {
	return r.ReturnedAt == nil
}
