package handler

import (
	"net/http"
	"strconv"

	"github.com/GoPolymarket/gaslessgate/internal/catalog"
	"github.com/GoPolymarket/gaslessgate/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

func (h *CatalogHandler) Chains(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalog.Chains())
}

// Tokens accepts a chain id or a chain name.
func (h *CatalogHandler) Tokens(c *gin.Context) {
	chain, ok := lookupChain(h.catalog, c.Param("id"))
	if !ok {
		c.Error(apperrors.Newf(apperrors.ErrNotFound, "unsupported chain %s", c.Param("id")))
		return
	}
	tokens := h.catalog.TokensForChain(chain.Key)
	if tokens == nil {
		tokens = []catalog.ResolvedToken{}
	}
	c.JSON(http.StatusOK, tokens)
}

func lookupChain(cat *catalog.Catalog, ref string) (catalog.Chain, bool) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return cat.ChainByID(id)
	}
	return cat.ChainByKey(ref)
}
