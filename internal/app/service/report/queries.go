package report

// Name identifies a KPI query.
type Name string

const (
	MonthlyRevenue      Name = "monthly_revenue"
	ChurnRate           Name = "churn_rate"
	RevenueBySegment    Name = "revenue_by_segment"
	ConversionRate      Name = "conversion_rate"
	MoMGrowth           Name = "mom_growth"
	GrossMargin         Name = "gross_margin"
	RevenueForecast     Name = "revenue_forecast"
	RevenueAnomalies    Name = "revenue_anomalies"
	ChurnSpikeDetection Name = "churn_spike_detection"
)

// names keeps reports in the order they are run and exported.
var names = []Name{
	MonthlyRevenue,
	ChurnRate,
	RevenueBySegment,
	ConversionRate,
	MoMGrowth,
	GrossMargin,
	RevenueForecast,
	RevenueAnomalies,
	ChurnSpikeDetection,
}

// Names lists every known report.
func Names() []Name {
	return append([]Name(nil), names...)
}

func (n Name) Valid() bool {
	_, ok := queries[n]
	return ok
}

// Queries are written for PostgreSQL.
var queries = map[Name]string{
	MonthlyRevenue: `
SELECT DATE_TRUNC('month', payment_date) AS month,
       SUM(amount) AS monthly_revenue,
       COUNT(DISTINCT customer_id) AS paying_customers
FROM payments
WHERE payment_status = 'Success'
GROUP BY DATE_TRUNC('month', payment_date)
ORDER BY month DESC`,

	ChurnRate: `
WITH monthly_churned AS (
    SELECT DATE_TRUNC('month', end_date) AS month, COUNT(DISTINCT customer_id) AS churned_customers
    FROM subscriptions
    WHERE end_date IS NOT NULL
    GROUP BY DATE_TRUNC('month', end_date)
),
monthly_active AS (
    SELECT DATE_TRUNC('month', payment_date) AS month, COUNT(DISTINCT customer_id) AS active_customers
    FROM payments
    WHERE payment_status = 'Success'
    GROUP BY DATE_TRUNC('month', payment_date)
)
SELECT COALESCE(ma.month, mch.month) AS month,
       COALESCE(ma.active_customers, 0) AS active_customers,
       COALESCE(mch.churned_customers, 0) AS churned_customers,
       CASE WHEN COALESCE(ma.active_customers, 0) > 0
            THEN ROUND((COALESCE(mch.churned_customers, 0)::DECIMAL /
                       (COALESCE(ma.active_customers, 0) + COALESCE(mch.churned_customers, 0))) * 100, 2)
            ELSE 0
       END AS churn_rate_pct
FROM monthly_active ma
FULL OUTER JOIN monthly_churned mch ON ma.month = mch.month
ORDER BY month DESC`,

	RevenueBySegment: `
SELECT c.segment,
       SUM(p.amount) AS total_revenue,
       COUNT(DISTINCT p.customer_id) AS customers
FROM payments p
JOIN customers c ON p.customer_id = c.customer_id
WHERE p.payment_status = 'Success'
GROUP BY c.segment
ORDER BY total_revenue DESC`,

	ConversionRate: `
SELECT DATE_TRUNC('month', c.signup_date) AS month,
       COUNT(DISTINCT c.customer_id) AS total_signups,
       COUNT(DISTINCT s.customer_id) AS converted_customers,
       ROUND((COUNT(DISTINCT s.customer_id)::DECIMAL / NULLIF(COUNT(DISTINCT c.customer_id), 0)) * 100, 2) AS conversion_rate_pct
FROM customers c
LEFT JOIN subscriptions s ON c.customer_id = s.customer_id
GROUP BY DATE_TRUNC('month', c.signup_date)
ORDER BY month DESC`,

	MoMGrowth: `
WITH monthly_revenue AS (
    SELECT DATE_TRUNC('month', payment_date) AS month, SUM(amount) AS revenue
    FROM payments
    WHERE payment_status = 'Success'
    GROUP BY DATE_TRUNC('month', payment_date)
)
SELECT month,
       revenue,
       LAG(revenue) OVER (ORDER BY month) AS previous_month_revenue,
       ROUND(((revenue - LAG(revenue) OVER (ORDER BY month))::DECIMAL /
              NULLIF(LAG(revenue) OVER (ORDER BY month), 0)) * 100, 2) AS mom_growth_pct
FROM monthly_revenue
ORDER BY month DESC`,

	GrossMargin: `
SELECT c.month,
       COALESCE(SUM(p.amount), 0) AS revenue,
       (c.infra_cost + c.marketing_cost + c.support_cost) AS total_costs,
       COALESCE(SUM(p.amount), 0) - (c.infra_cost + c.marketing_cost + c.support_cost) AS gross_profit,
       ROUND(((COALESCE(SUM(p.amount), 0) - (c.infra_cost + c.marketing_cost + c.support_cost))::DECIMAL /
              NULLIF(COALESCE(SUM(p.amount), 0), 0)) * 100, 2) AS gross_margin_pct
FROM costs c
LEFT JOIN payments p
       ON DATE_TRUNC('month', p.payment_date) = TO_DATE(c.month || '-01', 'YYYY-MM-DD')
      AND p.payment_status = 'Success'
GROUP BY c.month, c.infra_cost, c.marketing_cost, c.support_cost
ORDER BY c.month DESC`,

	// six-month projection: mean of the 3-month moving average and the
	// latest revenue extrapolated by the last month-over-month change
	RevenueForecast: `
WITH monthly_revenue AS (
    SELECT DATE_TRUNC('month', payment_date) AS month, SUM(amount) AS revenue
    FROM payments
    WHERE payment_status = 'Success'
    GROUP BY DATE_TRUNC('month', payment_date)
),
historical AS (
    SELECT month,
           revenue,
           AVG(revenue) OVER (ORDER BY month ROWS BETWEEN 2 PRECEDING AND CURRENT ROW) AS ma_3month,
           revenue - LAG(revenue, 1) OVER (ORDER BY month) AS mom_change
    FROM monthly_revenue
),
latest AS (
    SELECT month, revenue, ma_3month, COALESCE(mom_change, 0) AS mom_change
    FROM historical
    WHERE month = (SELECT MAX(month) FROM historical)
),
forecast AS (
    SELECT n AS forecast_period,
           l.month + (INTERVAL '1 month' * n) AS forecast_month,
           (l.ma_3month + GREATEST(0, l.revenue + l.mom_change * n)) / 2 AS forecasted_revenue
    FROM latest l
    CROSS JOIN generate_series(1, 6) AS n
)
SELECT 'Historical' AS data_type, h.month AS period, h.revenue AS value
FROM historical h
WHERE h.month >= (SELECT MAX(month) - INTERVAL '12 months' FROM historical)
UNION ALL
SELECT 'Forecast' AS data_type, f.forecast_month AS period, ROUND(f.forecasted_revenue, 2) AS value
FROM forecast f
ORDER BY data_type DESC, period`,

	RevenueAnomalies: `
WITH monthly_revenue AS (
    SELECT DATE_TRUNC('month', payment_date) AS month, SUM(amount) AS revenue
    FROM payments
    WHERE payment_status = 'Success'
    GROUP BY DATE_TRUNC('month', payment_date)
),
revenue_with_stats AS (
    SELECT month, revenue, LAG(revenue, 1) OVER (ORDER BY month) AS prev_month_revenue
    FROM monthly_revenue
)
SELECT month,
       revenue,
       prev_month_revenue,
       ROUND(((revenue - prev_month_revenue)::DECIMAL / NULLIF(prev_month_revenue, 0)) * 100, 2) AS mom_change_pct,
       CASE
           WHEN ABS((revenue - prev_month_revenue)::DECIMAL / NULLIF(prev_month_revenue, 0)) > 0.15
           THEN 'HIGH ANOMALY (>15% change)'
           WHEN ABS((revenue - prev_month_revenue)::DECIMAL / NULLIF(prev_month_revenue, 0)) > 0.10
           THEN 'MEDIUM ANOMALY (>10% change)'
           ELSE 'Normal'
       END AS anomaly_flag
FROM revenue_with_stats
WHERE prev_month_revenue IS NOT NULL
ORDER BY month DESC`,

	ChurnSpikeDetection: `
WITH monthly_churn AS (
    SELECT DATE_TRUNC('month', end_date) AS month, COUNT(DISTINCT customer_id) AS churned_customers
    FROM subscriptions
    WHERE end_date IS NOT NULL
    GROUP BY DATE_TRUNC('month', end_date)
),
churn_with_stats AS (
    SELECT month,
           churned_customers,
           AVG(churned_customers) OVER (ORDER BY month ROWS BETWEEN 5 PRECEDING AND 1 PRECEDING) AS avg_prev_6months,
           STDDEV(churned_customers) OVER (ORDER BY month ROWS BETWEEN 5 PRECEDING AND 1 PRECEDING) AS stddev_prev_6months
    FROM monthly_churn
)
SELECT month,
       churned_customers,
       ROUND(avg_prev_6months, 0) AS avg_prev_6months,
       CASE
           WHEN churned_customers > (avg_prev_6months + 2 * COALESCE(stddev_prev_6months, 0))
           THEN 'CHURN SPIKE DETECTED'
           WHEN churned_customers > (avg_prev_6months + 1.5 * COALESCE(stddev_prev_6months, 0))
           THEN 'Elevated Churn'
           ELSE 'Normal'
       END AS anomaly_flag
FROM churn_with_stats
WHERE avg_prev_6months IS NOT NULL
ORDER BY month DESC`,
}
