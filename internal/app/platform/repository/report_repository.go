package repository

import (
	"context"
	"fmt"
	"time"

	"feastly/internal/app/platform/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"feastly/pkg/logger"
)

type reportRepository struct {
	merchant *mongo.Collection
	admin    *mongo.Collection
}

// NewReportRepository создает репозиторий отчетов
// Создает составные индексы по ключу окна для быстрого upsert
func NewReportRepository(db *mongo.Database) ReportRepository {
	merchant := db.Collection("merchant_reports")
	admin := db.Collection("admin_reports")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := merchant.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "restaurant_id", Value: 1},
			{Key: "period", Value: 1},
			{Key: "report_date", Value: 1},
		},
		Options: options.Index().SetName("merchant_report_key_idx").SetUnique(true),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create merchant report index")
	}

	_, err = admin.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "period", Value: 1},
			{Key: "report_date", Value: 1},
		},
		Options: options.Index().SetName("admin_report_key_idx").SetUnique(true),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin report index")
	}

	return &reportRepository{
		merchant: merchant,
		admin:    admin,
	}
}

// UpsertMerchantReport сохраняет отчет ресторана по ключу
// (restaurant_id, period, report_date), перезаписывая предыдущее содержимое
func (r *reportRepository) UpsertMerchantReport(ctx context.Context, report *entity.MerchantReport) error {
	filter := bson.M{
		"restaurant_id": report.RestaurantID,
		"period":        report.Period,
		"report_date":   report.ReportDate,
	}
	update := bson.M{
		"$set": bson.M{
			"restaurant_id":    report.RestaurantID,
			"period":           report.Period,
			"report_date":      report.ReportDate,
			"completed_orders": report.CompletedOrders,
			"revenue":          report.Revenue,
			"top_products":     report.TopProducts,
			"updated_at":       time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.merchant.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert merchant report: %w", err)
	}

	return nil
}

// UpsertAdminReport сохраняет отчет платформы по ключу (period, report_date)
// Счетчики пользователей и ресторанов записываются только в месячный документ
func (r *reportRepository) UpsertAdminReport(ctx context.Context, report *entity.AdminReport) error {
	filter := bson.M{
		"period":      report.Period,
		"report_date": report.ReportDate,
	}

	set := bson.M{
		"period":        report.Period,
		"report_date":   report.ReportDate,
		"total_orders":  report.TotalOrders,
		"total_revenue": report.TotalRevenue,
		"top_products":  report.TopProducts,
		"updated_at":    time.Now(),
	}
	if report.Period == entity.ReportPeriodMonthly {
		set["total_users"] = report.TotalUsers
		set["total_restaurants"] = report.TotalRestaurants
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.admin.UpdateOne(ctx, filter, bson.M{"$set": set}, opts); err != nil {
		return fmt.Errorf("failed to upsert admin report: %w", err)
	}

	return nil
}

// ListMerchantReports получает историю отчетов ресторана, свежие сверху
func (r *reportRepository) ListMerchantReports(ctx context.Context, restaurantID string, filter entity.ReportFilter, page, limit int) ([]entity.MerchantReport, int64, error) {
	query := bson.M{"restaurant_id": restaurantID}
	applyReportFilter(query, filter)

	total, err := r.merchant.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count merchant reports: %w", err)
	}

	cursor, err := r.merchant.Find(ctx, query, listReportsOptions(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find merchant reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []entity.MerchantReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, fmt.Errorf("failed to decode merchant reports: %w", err)
	}

	return reports, total, nil
}

// ListAdminReports получает историю отчетов платформы, свежие сверху
func (r *reportRepository) ListAdminReports(ctx context.Context, filter entity.ReportFilter, page, limit int) ([]entity.AdminReport, int64, error) {
	query := bson.M{}
	applyReportFilter(query, filter)

	total, err := r.admin.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count admin reports: %w", err)
	}

	cursor, err := r.admin.Find(ctx, query, listReportsOptions(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find admin reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []entity.AdminReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, 0, fmt.Errorf("failed to decode admin reports: %w", err)
	}

	return reports, total, nil
}

func applyReportFilter(query bson.M, filter entity.ReportFilter) {
	if filter.Period != "" {
		query["period"] = filter.Period
	}
	dateQuery := bson.M{}
	if filter.StartDate != nil {
		dateQuery["$gte"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		dateQuery["$lte"] = *filter.EndDate
	}
	if len(dateQuery) > 0 {
		query["report_date"] = dateQuery
	}
}

func listReportsOptions(page, limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "report_date", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
}
