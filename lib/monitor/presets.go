package monitor

// LockMonPanel is the activity summary above the lock views
var LockMonPanel = Panel{
	Status: []StatusMetric{
		{Label: "threads connected", Name: "Threads_connected", Kind: Gauge},
		{Label: "threads running", Name: "Threads_running", Kind: Gauge},
		{Label: "queries", Name: "Questions", Kind: Counter},
	},
}

// TrxMonPanel is empty, the transaction monitor only shows trx and hll
var TrxMonPanel = Panel{}

// ConnectionPanel is the whole screen of the connection monitor
var ConnectionPanel = Panel{
	Status: []StatusMetric{
		{Label: "threads connected", Name: "Threads_connected", Kind: Gauge},
		{Label: "aborted connects", Name: "Aborted_connects", Kind: Counter},
		{Label: "aborted clients", Name: "Aborted_clients", Kind: Counter},

		{Label: "max used connections", Name: "Max_used_connections", Kind: Gauge, Gap: true},
		{Label: "max connections", Name: "max_connections", Kind: Setting},
		{Label: "max conns exceeded", Name: "Connection_errors_max_connections", Kind: Counter},

		{Label: "threads running", Name: "Threads_running", Kind: Gauge, Gap: true},
		{Label: "thread cache size", Name: "thread_cache_size", Kind: Setting},
		{Label: "threads cached", Name: "Threads_cached", Kind: Gauge},
		{Label: "threads created", Name: "Threads_created", Kind: Counter},

		{Label: "tmp tables", Name: "Created_tmp_tables", Kind: Counter, Gap: true},
		{Label: "tmp disk tables", Name: "Created_tmp_disk_tables", Kind: Counter},
		{Label: "sort merge passes", Name: "Sort_merge_passes", Kind: Counter},

		{Label: "row lock current waits", Name: "Innodb_row_lock_current_waits", Kind: Gauge, Gap: true},
		{Label: "row lock time", Name: "Innodb_row_lock_time", Kind: Counter},
		{Label: "row lock time avg", Name: "Innodb_row_lock_time_avg", Kind: Gauge},
		{Label: "row lock time max", Name: "Innodb_row_lock_time_max", Kind: Gauge},
		{Label: "row lock waits", Name: "Innodb_row_lock_waits", Kind: Counter},

		{Label: "rows read", Name: "Innodb_rows_read", Kind: Counter, Gap: true},
		{Label: "rows inserted", Name: "Innodb_rows_inserted", Kind: Counter},
		{Label: "rows updated", Name: "Innodb_rows_updated", Kind: Counter},
		{Label: "rows deleted", Name: "Innodb_rows_deleted", Kind: Counter},
		{Label: "queries", Name: "Questions", Kind: Counter},
	},
	Sys: []SysMetric{
		{
			Label: "lock timeouts",
			Query: `SELECT Variable_value FROM sys.metrics WHERE Variable_name = 'lock_timeouts'`,
		},
		{
			Label:  "BP hit rate",
			Query:  `SELECT ROUND(100 - (100 * (SELECT Variable_value FROM sys.metrics WHERE Variable_name = 'Innodb_pages_read') / (SELECT Variable_value FROM sys.metrics WHERE Variable_name = 'Innodb_buffer_pool_read_requests')), 2)`,
			Suffix: "%",
		},
		{
			Label:  "uptime",
			Query:  `SELECT ROUND((Variable_value / 3600), 2) FROM sys.metrics WHERE Variable_name = 'uptime'`,
			Suffix: " hrs",
		},
	},
}
