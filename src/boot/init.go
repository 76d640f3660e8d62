package boot

import (
	"log"
	"time"

	"tembea/src/db"
	"tembea/src/lib"
	"tembea/src/models"
	"tembea/src/types"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Trip{},
		&models.Product{},
		&models.Booking{},
		&models.Order{},
		&models.OrderItem{},
		&models.MpesaTransaction{},
		&models.Review{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if _, err := lib.CreateCronJob(ReportStaleLedgerEntries, 1*time.Hour); err != nil {
		log.Printf("Error scheduling stale-ledger sweep: %s\n", err.Error())
	}
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}

// ReportStaleLedgerEntries surfaces pending entries older than a day for
// staff. Manual till payments legitimately sit in pending until a staff
// confirmation, so this only reports; nothing is auto-cancelled.
func ReportStaleLedgerEntries() {
	cutoff := time.Now().Add(-24 * time.Hour)
	db := db.GetDb()

	var staleBookings, staleOrders int64
	if err := db.
		Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", types.BOOKING_PENDING, cutoff).
		Count(&staleBookings).
		Error; err != nil {
		log.Printf("[Sweep] Error counting stale bookings: %s\n", err.Error())
		return
	}
	if err := db.
		Model(&models.Order{}).
		Where("status = ? AND created_at < ?", types.ORDER_PENDING, cutoff).
		Count(&staleOrders).
		Error; err != nil {
		log.Printf("[Sweep] Error counting stale orders: %s\n", err.Error())
		return
	}
	if staleBookings > 0 || staleOrders > 0 {
		log.Printf("[Sweep] %d pending bookings and %d pending orders older than 24h await reconciliation\n", staleBookings, staleOrders)
	}
}
