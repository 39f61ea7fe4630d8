package repository

// insertBatchSize bounds rows per INSERT so bulk writes stay under the
// bind-variable limits of SQLite and Postgres.
const insertBatchSize = 500
