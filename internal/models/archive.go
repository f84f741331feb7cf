package models

// ArchiveRequest описывает запрос одного клиента на архив каталога; живёт ровно один HTTP-запрос.
type ArchiveRequest struct {
	ID          string
	ArchiveHash string
	Dir         string
}

// StreamStats описывает результат перекачки архива клиенту.
type StreamStats struct {
	Bytes  int64
	Chunks int
}
