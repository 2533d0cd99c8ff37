package http

// registerV1Routes sets up the /api/v1 endpoints.
// Every measurement route has a /csv twin.
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware())

	stations := v1.Group("/stations")
	{
		stations.GET("", s.handleV1ListStations)
		stations.GET("/:station", s.handleV1Station(formatJSON))
		stations.GET("/:station/csv", s.handleV1Station(formatCSV))
		stations.GET("/:station/sensordata/:year", s.handleV1StationYear(formatJSON))
		stations.GET("/:station/sensordata/:year/csv", s.handleV1StationYear(formatCSV))
	}

	sensordata := v1.Group("/sensordata")
	{
		sensordata.GET("/yearly/:year", s.handleV1Year(formatJSON))
		sensordata.GET("/yearly/:year/csv", s.handleV1Year(formatCSV))
		sensordata.GET("/:date", s.handleV1Date(formatJSON))
		// A four digit key keeps the older /sensordata/:year/csv meaning.
		sensordata.GET("/:date/csv", s.handleV1DateOrYearCSV)
	}

	v1.GET("/recent", s.handleV1Recent(formatJSON))
	v1.GET("/recent/csv", s.handleV1Recent(formatCSV))

	v1.GET("/download/:date", s.handleV1Download)
}
